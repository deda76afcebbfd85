package model

import (
	"context"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// fakeCompleter answers every call with reply or err
type fakeCompleter struct {
	reply Message
	err   error

	calls       int
	lastText    string
	lastHistory []Message
}

func (f *fakeCompleter) SendMessage(ctx context.Context, history []Message, text string) (Message, error) {
	f.calls++
	f.lastText = text
	f.lastHistory = history
	if f.err != nil {
		return Message{}, f.err
	}
	return f.reply, nil
}

// blockingCompleter waits for the request context to end
type blockingCompleter struct{}

func (blockingCompleter) SendMessage(ctx context.Context, history []Message, text string) (Message, error) {
	<-ctx.Done()
	return Message{}, ctx.Err()
}

type fakeHistory struct {
	messages []Message
	err      error
	calls    int
}

func (f *fakeHistory) GetConversationHistory(ctx context.Context) ([]Message, error) {
	f.calls++
	return f.messages, f.err
}

func countKind(notes []Notification, kind NotificationKind) int {
	n := 0
	for _, note := range notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

func roles(messages []Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.Role + ":" + msg.Content
	}
	return out
}
