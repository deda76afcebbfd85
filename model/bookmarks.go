package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// DefaultTopic labels bookmarks saved without a user-supplied topic
const DefaultTopic = "Saved Message"

// SavedMessage is a bookmarked projection of a message. It is keyed by
// Content and outlives the transcript it came from.
type SavedMessage struct {
	ID        string
	MessageID string // Source transcript entry, empty when saved by content alone
	Content   string
	Topic     string
	SavedAt   time.Time
}

// BookmarkIndex holds saved messages, most recent first. At most one entry
// exists per distinct Content value.
type BookmarkIndex struct {
	entries      []SavedMessage
	defaultTopic string
	now          func() time.Time
}

// NewBookmarkIndex creates an empty index
func NewBookmarkIndex(defaultTopic string, now func() time.Time) *BookmarkIndex {
	if defaultTopic == "" {
		defaultTopic = DefaultTopic
	}
	if now == nil {
		now = time.Now
	}
	return &BookmarkIndex{defaultTopic: defaultTopic, now: now}
}

// IsSaved tests membership by exact content equality
func (b *BookmarkIndex) IsSaved(content string) bool {
	return b.indexOf(content) >= 0
}

// Toggle removes the entry for content if present, otherwise inserts it at
// the front. Returns true when the content ends up saved.
func (b *BookmarkIndex) Toggle(content, topic string) bool {
	return b.toggle("", content, topic)
}

// ToggleMessage is Toggle for a transcript entry, recording its ID
func (b *BookmarkIndex) ToggleMessage(msg Message, topic string) bool {
	return b.toggle(msg.ID, msg.Content, topic)
}

func (b *BookmarkIndex) toggle(messageID, content, topic string) bool {
	if i := b.indexOf(content); i >= 0 {
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		return false
	}
	if topic == "" {
		topic = b.defaultTopic
	}
	saved := SavedMessage{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Content:   content,
		Topic:     topic,
		SavedAt:   b.now(),
	}
	b.entries = append([]SavedMessage{saved}, b.entries...)
	return true
}

// Remove deletes the saved message with the given ID.
// Returns false if no entry matched.
func (b *BookmarkIndex) Remove(id string) bool {
	for i, entry := range b.entries {
		if entry.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// List returns saved messages, most recent first
func (b *BookmarkIndex) List() []SavedMessage {
	out := make([]SavedMessage, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of saved messages
func (b *BookmarkIndex) Len() int {
	return len(b.entries)
}

// Search fuzzy-matches query against topic and content, best match first.
// An empty query returns the full list.
func (b *BookmarkIndex) Search(query string) []SavedMessage {
	if query == "" {
		return b.List()
	}

	targets := make([]string, len(b.entries))
	for i, entry := range b.entries {
		targets[i] = entry.Topic + " " + entry.Content
	}

	matches := fuzzy.Find(query, targets)
	results := make([]SavedMessage, len(matches))
	for i, match := range matches {
		results[i] = b.entries[match.Index]
	}
	return results
}

func (b *BookmarkIndex) indexOf(content string) int {
	for i, entry := range b.entries {
		if entry.Content == content {
			return i
		}
	}
	return -1
}
