package bot

import "strings"

// Trigger is the prefix character that marks a chat line as a command attempt.
const Trigger = "!"

// Kind identifies a command family.
type Kind int

const (
	KindJoin Kind = iota
	KindLeave
	KindNext
	KindListQueue
	KindStaticReply
	KindBroadcast
	KindNoOp
	KindRelaySnippet
)

func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "join"
	case KindLeave:
		return "leave"
	case KindNext:
		return "next"
	case KindListQueue:
		return "queue"
	case KindStaticReply:
		return "reply"
	case KindBroadcast:
		return "broadcast"
	case KindNoOp:
		return "nothing"
	case KindRelaySnippet:
		return "code"
	default:
		return "unknown"
	}
}

// Command is one recognized chat instruction. It is pure data; behavior lives
// in the Executor. Text carries the fixed reply/broadcast body, or the raw
// snippet for KindRelaySnippet.
type Command struct {
	Kind Kind
	Text string
}

// Message is the inbound chat event the dispatch loop consumes.
type Message struct {
	Channel string
	Login   string // stable identity
	Display string
	Text    string
	Badges  map[string]int
}

// builtinTokens maps the fixed command tokens to their kind. Reply and
// broadcast tokens come from the commandset data instead (see commandset.go).
var builtinTokens = map[string]Kind{
	Trigger + "join":    KindJoin,
	Trigger + "leave":   KindLeave,
	Trigger + "next":    KindNext,
	Trigger + "queue":   KindListQueue,
	Trigger + "nothing": KindNoOp,
	Trigger + "code":    KindRelaySnippet,
}

// Parse classifies a raw chat line. It returns false for anything that is not
// a command: no trigger prefix, or a trigger token nobody registered. Unknown
// tokens are ignored on purpose, not errors.
func (cs *CommandSet) Parse(text string) (Command, bool) {
	if !strings.HasPrefix(text, Trigger) {
		return Command{}, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}
	token := fields[0]
	if kind, ok := builtinTokens[token]; ok {
		cmd := Command{Kind: kind}
		if kind == KindRelaySnippet {
			// Everything after "!code " verbatim, internal whitespace preserved.
			if rest, found := strings.CutPrefix(text, token+" "); found {
				cmd.Text = rest
			}
		}
		return cmd, true
	}
	if reply, ok := cs.replies[token]; ok {
		return Command{Kind: KindStaticReply, Text: reply}, true
	}
	if msg, ok := cs.broadcasts[token]; ok {
		return Command{Kind: KindBroadcast, Text: msg}, true
	}
	return Command{}, false
}
