// Package discordapi contains a minimal client for the Discord REST API,
// limited to posting messages into a channel with a bot token.
package discordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultBaseURL is the production Discord API root.
const DefaultBaseURL = "https://discord.com/api/v10"

// maxMessageLen is Discord's hard limit on message content, in characters.
const maxMessageLen = 2000

// truncate shortens content to the Discord character limit on a rune
// boundary. A trailing code-block fence is kept so long snippets still render
// as a block instead of spilling raw backticks into the channel.
func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= maxMessageLen {
		return content
	}
	const fence = "\n```"
	if strings.HasSuffix(content, fence) {
		return string(runes[:maxMessageLen-len(fence)]) + fence
	}
	return string(runes[:maxMessageLen])
}

// Client posts messages on behalf of a bot user.
type Client struct {
	Token      string
	BaseURL    string // defaults to DefaultBaseURL
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// PostMessage creates a message in the given channel. Content longer than the
// Discord limit is truncated rather than rejected, since relayed chat
// snippets are best effort.
func (c *Client) PostMessage(ctx context.Context, channelID, content string) error {
	if c.Token == "" {
		return fmt.Errorf("discord token empty")
	}
	if channelID == "" {
		return fmt.Errorf("channel id empty")
	}
	content = truncate(content)
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/channels/%s/messages", c.base(), channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord post failed: %s: %s", resp.Status, string(b))
	}
	return nil
}
