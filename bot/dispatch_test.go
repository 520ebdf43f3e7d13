package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onnwee/stuck-bot/queue"
)

type fakeChat struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeChat) Say(channel, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, channel+"|"+text)
}

func (f *fakeChat) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

type fakePoster struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (f *fakePoster) PostMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, channelID+"|"+content)
	return nil
}

func (f *fakePoster) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

func newTestBot(t *testing.T, chat *fakeChat, poster *fakePoster) *Bot {
	t.Helper()
	return &Bot{
		Commands:  testCommandSet(t),
		Exec:      &Executor{Queue: queue.NewManager(), Formatter: &fakeFormatter{}, DiscordChannelID: "42"},
		Chat:      chat,
		Secondary: poster,
	}
}

func runBot(t *testing.T, b *Bot, msgs ...Message) {
	t.Helper()
	events := make(chan Message, len(msgs))
	for _, m := range msgs {
		events <- m
	}
	close(events)
	done := make(chan struct{})
	go func() {
		b.Run(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch loop did not drain events")
	}
}

func TestRunDispatchesCommands(t *testing.T) {
	chat := &fakeChat{}
	poster := &fakePoster{}
	b := newTestBot(t, chat, poster)

	runBot(t, b,
		testMsg("alice", "just chatting, no command"),
		testMsg("alice", "!join"),
		testMsg("bob", "!queue"),
		testMsg("carol", "!nothing"),
	)

	lines := chat.all()
	if len(lines) != 2 {
		t.Fatalf("chat sends = %v, want join reply and queue listing", lines)
	}
	if !strings.Contains(lines[0], "@alice") {
		t.Errorf("first send = %q, want join ack for alice", lines[0])
	}
	if !strings.Contains(lines[1], "alice") {
		t.Errorf("queue listing = %q, want alice listed", lines[1])
	}
	posts := poster.all()
	if len(posts) != 1 || !strings.Contains(posts[0], "This does nothing") {
		t.Errorf("discord posts = %v, want noop acknowledgment", posts)
	}
}

func TestRunSurvivesSendFailures(t *testing.T) {
	chat := &fakeChat{}
	poster := &fakePoster{err: errors.New("discord 502")}
	b := newTestBot(t, chat, poster)

	// The failing Discord post must not prevent the later chat command.
	runBot(t, b,
		testMsg("alice", "!code fn main() {}"),
		testMsg("bob", "!join"),
	)

	lines := chat.all()
	if len(lines) != 1 || !strings.Contains(lines[0], "@bob") {
		t.Errorf("chat sends after failed post = %v, want bob's join ack", lines)
	}
}

func TestRunSurvivesRecorderFailures(t *testing.T) {
	chat := &fakeChat{}
	b := newTestBot(t, chat, &fakePoster{})
	b.Record = func(context.Context, string, string, string, string) error {
		return errors.New("db down")
	}
	runBot(t, b, testMsg("alice", "!join"), testMsg("bob", "!join"))
	if len(chat.all()) != 2 {
		t.Errorf("chat sends = %v, want both join acks despite recorder errors", chat.all())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	b := newTestBot(t, &fakeChat{}, &fakePoster{})
	events := make(chan Message)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, events)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestRunRecordsHandledCommands(t *testing.T) {
	b := newTestBot(t, &fakeChat{}, &fakePoster{})
	var mu sync.Mutex
	var recorded []string
	b.Record = func(_ context.Context, channel, login, command, text string) error {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, login+":"+command)
		return nil
	}
	runBot(t, b,
		testMsg("alice", "!join"),
		testMsg("alice", "not a command"),
		testMsg("bob", "!unknown"),
	)
	mu.Lock()
	defer mu.Unlock()
	if len(recorded) != 1 || recorded[0] != "alice:join" {
		t.Errorf("recorded = %v, want only the handled command", recorded)
	}
}
