// Package format wraps an external code formatter behind a small interface so
// the bot can pretty-print relayed snippets. Failures are expected (formatter
// missing, syntactically broken snippet) and callers fall back to the raw text.
package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// Formatter formats a source snippet. Implementations must be safe for
// concurrent use.
type Formatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// CmdFormatter runs an external formatter process, feeding the snippet on
// stdin and reading the result from stdout.
type CmdFormatter struct {
	// Path is the formatter binary, e.g. "rustfmt".
	Path string
	// Args are passed verbatim to the process.
	Args []string
	// Timeout bounds a single invocation (default 10s).
	Timeout time.Duration
}

// NewCmdFormatter parses a command line of the form "rustfmt --config newline_style=Unix".
func NewCmdFormatter(cmdline string, timeout time.Duration) (*CmdFormatter, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty formatter command")
	}
	return &CmdFormatter{Path: fields[0], Args: fields[1:], Timeout: timeout}, nil
}

// Format runs the formatter synchronously. It returns an error on spawn
// failure, non-zero exit, or non-UTF-8 output; the input is never modified.
func (f *CmdFormatter) Format(ctx context.Context, src string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.Path, f.Args...)
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", f.Path, err, msg)
		}
		return "", fmt.Errorf("%s: %w", f.Path, err)
	}
	out := stdout.String()
	if !utf8.ValidString(out) {
		return "", fmt.Errorf("%s produced invalid UTF-8 output", f.Path)
	}
	return out, nil
}
