package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewConversationStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewConversationStoreCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewConversationStore(dir)
	if err != nil {
		t.Fatalf("NewConversationStore() error = %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, "conversations.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestAppendAndListMessages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AppendMessages(ctx, "conv-1",
		StoredMessage{Role: "user", Content: "hello"},
		StoredMessage{Role: "assistant", Content: "hi"},
	); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}
	if err := store.AppendMessages(ctx, "conv-1",
		StoredMessage{Role: "user", Content: "how are you?"},
	); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	got, err := store.ListMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}

	want := []string{"hello", "hi", "how are you?"}
	if len(got) != len(want) {
		t.Fatalf("ListMessages() returned %d messages, want %d", len(got), len(want))
	}
	for i, msg := range got {
		if msg.Content != want[i] {
			t.Errorf("message %d = %q, want %q", i, msg.Content, want[i])
		}
		if msg.ID == "" {
			t.Errorf("message %d has no ID", i)
		}
		if msg.ConversationID != "conv-1" {
			t.Errorf("message %d conversation = %q, want conv-1", i, msg.ConversationID)
		}
	}
}

func TestListMessagesUnknownConversation(t *testing.T) {
	store := newTestStore(t)

	got, err := store.ListMessages(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListMessages() = %v, want empty non-nil slice", got)
	}
}

func TestConversationsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AppendMessages(ctx, "a", StoredMessage{Role: "user", Content: "in a"})
	_ = store.AppendMessages(ctx, "b", StoredMessage{Role: "user", Content: "in b"})

	got, _ := store.ListMessages(ctx, "a")
	if len(got) != 1 || got[0].Content != "in a" {
		t.Errorf("conversation a = %+v", got)
	}
}

func TestAppendMessagesValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		msgs    []StoredMessage
		wantErr bool
	}{
		{"missing conversation", "", []StoredMessage{{Role: "user", Content: "x"}}, true},
		{"no messages", "conv", nil, false},
		{"one message", "conv", []StoredMessage{{Role: "user", Content: "x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AppendMessages(ctx, tt.id, tt.msgs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("AppendMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureConversation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.EnsureConversation(ctx, "", "llama3.1")
	if err != nil {
		t.Fatalf("EnsureConversation() error = %v", err)
	}
	if id == "" {
		t.Fatal("EnsureConversation() returned empty ID")
	}

	again, err := store.EnsureConversation(ctx, id, "other")
	if err != nil || again != id {
		t.Fatalf("EnsureConversation(existing) = %q, %v", again, err)
	}

	conv, err := store.GetConversation(ctx, id)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if conv.Model != "llama3.1" {
		t.Errorf("Model = %q, want llama3.1 (existing rows are not overwritten)", conv.Model)
	}
	if conv.MessageCount != 0 {
		t.Errorf("MessageCount = %d, want 0", conv.MessageCount)
	}
}

func TestListConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AppendMessages(ctx, "older", StoredMessage{Role: "user", Content: "1"})
	time.Sleep(10 * time.Millisecond)
	_ = store.AppendMessages(ctx, "newer", StoredMessage{Role: "user", Content: "1"}, StoredMessage{Role: "assistant", Content: "2"})

	convs, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("ListConversations() returned %d, want 2", len(convs))
	}
	if convs[0].ID != "newer" || convs[0].MessageCount != 2 {
		t.Errorf("first conversation = %+v, want newer with 2 messages", convs[0])
	}
}

func TestDeleteConversation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AppendMessages(ctx, "doomed", StoredMessage{Role: "user", Content: "bye"})

	if err := store.DeleteConversation(ctx, "doomed"); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if msgs, _ := store.ListMessages(ctx, "doomed"); len(msgs) != 0 {
		t.Errorf("messages survived delete: %v", msgs)
	}
	if _, err := store.GetConversation(ctx, "doomed"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("GetConversation() error = %v, want ErrConversationNotFound", err)
	}
	if err := store.DeleteConversation(ctx, "doomed"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("second DeleteConversation() error = %v, want ErrConversationNotFound", err)
	}
}
