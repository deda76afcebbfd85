package model

import (
	"github.com/google/uuid"
)

// Transcript holds the ordered message sequence for the active conversation.
// Order is never rearranged: entries are appended, or the whole sequence is
// replaced by history hydration.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append inserts msg at the end. User messages must carry non-empty content;
// assistant messages may be empty.
func (t *Transcript) Append(msg Message) error {
	if msg.Role == RoleUser && msg.Content == "" {
		return ErrEmptyMessage
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	t.messages = append(t.messages, msg)
	return nil
}

// ReplaceAll overwrites the entire sequence. Last writer wins.
func (t *Transcript) ReplaceAll(history []Message) {
	replaced := make([]Message, 0, len(history))
	for _, msg := range history {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		replaced = append(replaced, msg)
	}
	t.messages = replaced
}

// Clear resets to an empty sequence
func (t *Transcript) Clear() {
	t.messages = nil
}

// Messages returns a copy of the sequence in conversation order
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.messages)
}

// LastAssistant returns the most recent assistant message, if any
func (t *Transcript) LastAssistant() (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant {
			return t.messages[i], true
		}
	}
	return Message{}, false
}
