package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/stuck-bot/telemetry"
)

// ChatSender sends a line to a Twitch channel. Matched by the gempir IRC
// client; sends are fire-and-forget at this layer.
type ChatSender interface {
	Say(channel, text string)
}

// SecondaryPoster posts a message to a Discord channel.
type SecondaryPoster interface {
	PostMessage(ctx context.Context, channelID, content string) error
}

// Recorder persists a handled command for auditing. Best effort; errors are
// logged and dropped.
type Recorder func(ctx context.Context, channel, login, command, text string) error

// Bot wires the classifier, executor, and transports into the dispatch loop.
type Bot struct {
	Commands  *CommandSet
	Exec      *Executor
	Chat      ChatSender
	Secondary SecondaryPoster
	Record    Recorder // optional
}

// Run consumes inbound chat events one at a time until ctx is canceled or the
// events channel closes. Commands are processed in arrival order; a failing
// send or recorder never stops the loop.
func (b *Bot) Run(ctx context.Context, events <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			b.handle(ctx, msg)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg Message) {
	cmd, ok := b.Commands.Parse(msg.Text)
	if !ok {
		if strings.HasPrefix(msg.Text, Trigger) {
			inc(telemetry.CommandsUnknown)
		}
		return
	}
	inc(telemetry.CommandsHandled)

	ctx, span := telemetry.StartSpan(ctx, "bot", "command "+cmd.Kind.String(),
		attribute.String("chat.login", msg.Login),
		attribute.String("chat.channel", msg.Channel),
	)
	defer span.End()

	start := time.Now()
	effects := b.Exec.Execute(ctx, cmd, msg)
	for _, ef := range effects {
		b.send(ctx, ef)
	}
	if telemetry.DispatchDuration != nil {
		telemetry.DispatchDuration.Observe(time.Since(start).Seconds())
	}

	if b.Record != nil {
		if err := b.Record(ctx, msg.Channel, msg.Login, cmd.Kind.String(), msg.Text); err != nil {
			slog.Warn("command audit insert failed", slog.Any("err", err))
		}
	}
}

func (b *Bot) send(ctx context.Context, ef Effect) {
	switch ef.Target {
	case TargetChat:
		b.Chat.Say(ef.Channel, ef.Text)
	case TargetSecondary:
		if b.Secondary == nil {
			slog.Debug("discord relay not configured; dropping message")
			return
		}
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := b.Secondary.PostMessage(sendCtx, ef.Channel, ef.Text); err != nil {
			inc(telemetry.ChatSendFailures)
			slog.Warn("discord post failed", slog.Any("err", err), slog.String("channel_id", ef.Channel))
		}
	}
}
