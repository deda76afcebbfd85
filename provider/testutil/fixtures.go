package testutil

import (
	"time"

	"treechat/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		model.NewMessage(model.RoleUser, "Hello, how are you?", time.Now()),
		model.NewMessage(model.RoleAssistant, "I'm doing well, thank you!", time.Now()),
		model.NewMessage(model.RoleUser, "Can you help me with a task?", time.Now()),
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{model.NewMessage(model.RoleUser, content, time.Now())}
}

// SSEStream renders frames as a text/event-stream body
func SSEStream(frames ...string) string {
	var body string
	for _, frame := range frames {
		body += "data: " + frame + "\n\n"
	}
	return body
}
