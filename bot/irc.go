package bot

import (
	"context"
	"log/slog"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/stuck-bot/telemetry"
)

// Greeting is said in chat once the bot connects.
const Greeting = "Hello! I am the Stuck-Bot, How may I unstick you?"

// eventBuffer bounds the inbound queue so a stalled dispatch loop sheds
// messages instead of blocking the IRC read loop.
const eventBuffer = 128

// StartChatBridge connects to Twitch IRC for channel and feeds private
// messages into the bot's dispatch loop. It blocks until ctx is canceled or
// the connection drops for good. The token must be a user OAuth token with
// chat:read/chat:edit scopes; gempir expects the "oauth:" prefix, which is
// added when missing.
func StartChatBridge(ctx context.Context, b *Bot, username, token, channel string) {
	if len(token) < 6 || token[:6] != "oauth:" {
		token = "oauth:" + token
	}
	client := twitch.NewClient(username, token)
	b.Chat = client

	events := make(chan Message, eventBuffer)
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		ev := Message{
			Channel: msg.Channel,
			Login:   msg.User.Name,
			Display: msg.User.DisplayName,
			Text:    msg.Message,
			Badges:  msg.User.Badges,
		}
		select {
		case events <- ev:
		default:
			slog.Warn("dispatch backlog full; dropping chat message", slog.String("login", ev.Login))
		}
	})
	client.OnConnect(func() {
		telemetry.SetIRCConnected(true)
		slog.Info("twitch chat connected", slog.String("channel", channel))
		client.Say(channel, Greeting)
	})

	go b.Run(ctx, events)

	// Handle context cancellation by closing the client.
	go func() {
		<-ctx.Done()
		if err := client.Disconnect(); err != nil {
			slog.Debug("twitch disconnect", slog.Any("err", err))
		}
	}()

	client.Join(channel)
	if err := client.Connect(); err != nil && ctx.Err() == nil {
		slog.Error("twitch chat connect error", slog.Any("err", err))
	}
	telemetry.SetIRCConnected(false)
}
