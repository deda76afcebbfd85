package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a chat message in the conversation
type Message struct {
	ID        string // Assigned at append time when empty
	Role      string
	Content   string
	Timestamp time.Time
}

// NewMessage creates a message with a fresh ID
func NewMessage(role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// IsConversational reports whether the message belongs in a transcript.
// System prompts and tool chatter are never shown to the user.
func (m Message) IsConversational() bool {
	return m.Role == RoleUser || m.Role == RoleAssistant
}
