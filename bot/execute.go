package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onnwee/stuck-bot/format"
	"github.com/onnwee/stuck-bot/queue"
	"github.com/onnwee/stuck-bot/telemetry"
)

// priorityBadges fast-track a joining viewer ahead of default entries.
var priorityBadges = []string{"broadcaster", "moderator", "vip", "subscriber", "founder"}

// elevatedBadges may pick the next person from the queue.
var elevatedBadges = []string{"broadcaster", "moderator"}

// RoleFor derives the queue role from Twitch badges.
func RoleFor(msg Message) queue.Role {
	for _, b := range priorityBadges {
		if msg.Badges[b] > 0 {
			return queue.RolePriority
		}
	}
	return queue.RoleDefault
}

func isElevated(msg Message) bool {
	for _, b := range elevatedBadges {
		if msg.Badges[b] > 0 {
			return true
		}
	}
	return false
}

// Executor turns a classified command into outbound effects. It reads and
// mutates the queue and never fails: fallible sub-operations (queue join,
// formatter) degrade to a defined fallback effect so one bad command cannot
// stall the dispatch loop.
type Executor struct {
	Queue            *queue.Manager
	Formatter        format.Formatter
	DiscordChannelID string
}

// Execute runs a single command for the given message and returns the sends
// to perform. The formatter is the only blocking sub-operation and runs
// outside any queue lock.
func (e *Executor) Execute(ctx context.Context, cmd Command, msg Message) []Effect {
	// Replies address the sender by display name, falling back to the login
	// when the platform sent none.
	name := msg.Display
	if name == "" {
		name = msg.Login
	}
	reply := func(text string) Effect {
		return Effect{Target: TargetChat, Channel: msg.Channel, Text: fmt.Sprintf("@%s: %s", name, text)}
	}

	switch cmd.Kind {
	case KindJoin:
		role := RoleFor(msg)
		err := e.Queue.Join(msg.Login, role)
		telemetry.SetQueueDepth(e.Queue.Len())
		if errors.Is(err, queue.ErrAlreadyQueued) {
			inc(telemetry.JoinsRejected)
			return []Effect{reply(fmt.Sprintf("you're already in the queue (position %d)", e.Queue.Position(msg.Login)))}
		}
		inc(telemetry.JoinsAccepted)
		return []Effect{reply(fmt.Sprintf("joined the queue at position %d", e.Queue.Position(msg.Login)))}

	case KindLeave:
		removed := e.Queue.Leave(msg.Login)
		telemetry.SetQueueDepth(e.Queue.Len())
		if !removed {
			return []Effect{reply("you're not in the queue")}
		}
		return []Effect{reply("removed you from the queue")}

	case KindNext:
		if !isElevated(msg) {
			return []Effect{reply("only the broadcaster or mods can pick the next person")}
		}
		p, err := e.Queue.Next()
		telemetry.SetQueueDepth(e.Queue.Len())
		if errors.Is(err, queue.ErrEmpty) {
			return []Effect{reply("the queue is empty")}
		}
		return []Effect{{Target: TargetChat, Channel: msg.Channel, Text: fmt.Sprintf("Next up: @%s", p.Login)}}

	case KindListQueue:
		snap := e.Queue.Snapshot()
		if len(snap) == 0 {
			return []Effect{reply("the queue is empty")}
		}
		return []Effect{reply("Current queue: " + strings.Join(snap, ", "))}

	case KindStaticReply:
		return []Effect{reply(cmd.Text)}

	case KindBroadcast:
		return []Effect{{Target: TargetChat, Channel: msg.Channel, Text: cmd.Text}}

	case KindNoOp:
		slog.Debug("nothing received", slog.String("login", msg.Login))
		return []Effect{{Target: TargetSecondary, Channel: e.DiscordChannelID, Text: "This does nothing"}}

	case KindRelaySnippet:
		text := cmd.Text
		var formatted string
		var err error
		telemetry.TimeFunc(telemetry.FormatDuration, func() {
			formatted, err = e.Formatter.Format(ctx, text)
		})
		if err != nil {
			// Best effort: post the snippet verbatim rather than dropping it.
			slog.Warn("snippet format failed, relaying raw", slog.Any("err", err), slog.String("login", msg.Login))
			inc(telemetry.FormatFallbacks)
		} else {
			text = formatted
		}
		inc(telemetry.SnippetsRelayed)
		block := "```rs\n" + strings.TrimRight(text, "\n") + "\n```"
		return []Effect{{Target: TargetSecondary, Channel: e.DiscordChannelID, Text: block}}
	}
	return nil
}

// inc guards against metrics not being registered (unit tests).
func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
