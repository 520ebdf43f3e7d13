package bot

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed commands.yaml
var embeddedCommands []byte

// CommandSet holds the data-driven half of the command table: fixed replies
// addressed to the sender and channel-wide broadcasts. The built-in commands
// (join, leave, next, queue, nothing, code) are compiled in; everything else
// is content and lives in commands.yaml so streamers can edit it without a
// rebuild.
type CommandSet struct {
	replies    map[string]string
	broadcasts map[string]string
}

type commandFile struct {
	Replies    map[string]string `yaml:"replies"`
	Broadcasts map[string]string `yaml:"broadcasts"`
}

// LoadCommandSet parses YAML commandset data and validates the tokens.
func LoadCommandSet(data []byte) (*CommandSet, error) {
	var cf commandFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse commandset: %w", err)
	}
	cs := &CommandSet{
		replies:    make(map[string]string, len(cf.Replies)),
		broadcasts: make(map[string]string, len(cf.Broadcasts)),
	}
	add := func(dst map[string]string, token, text string) error {
		if !strings.HasPrefix(token, Trigger) {
			return fmt.Errorf("command token %q must start with %q", token, Trigger)
		}
		if strings.ContainsAny(token, " \t\n") {
			return fmt.Errorf("command token %q must not contain whitespace", token)
		}
		if _, clash := builtinTokens[token]; clash {
			return fmt.Errorf("command token %q shadows a built-in command", token)
		}
		if text == "" {
			return fmt.Errorf("command token %q has empty text", token)
		}
		dst[token] = text
		return nil
	}
	for token, text := range cf.Replies {
		if err := add(cs.replies, token, text); err != nil {
			return nil, err
		}
	}
	for token, text := range cf.Broadcasts {
		if _, dup := cs.replies[token]; dup {
			return nil, fmt.Errorf("command token %q defined as both reply and broadcast", token)
		}
		if err := add(cs.broadcasts, token, text); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// LoadCommandSetFile loads a commandset from path, falling back to the
// embedded default when path is empty.
func LoadCommandSetFile(path string) (*CommandSet, error) {
	if path == "" {
		return LoadCommandSet(embeddedCommands)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commandset: %w", err)
	}
	return LoadCommandSet(data)
}

// Tokens returns every registered token (built-in and data-driven), for the
// status endpoint.
func (cs *CommandSet) Tokens() []string {
	out := make([]string, 0, len(builtinTokens)+len(cs.replies)+len(cs.broadcasts))
	for t := range builtinTokens {
		out = append(out, t)
	}
	for t := range cs.replies {
		out = append(out, t)
	}
	for t := range cs.broadcasts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
