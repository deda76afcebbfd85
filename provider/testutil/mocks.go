package testutil

import (
	"context"
	"strings"

	"treechat/model"
	"treechat/ollama"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	ChatFunc       func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	// LastMessages holds the messages passed to the most recent Chat call
	LastMessages []model.Message

	currentModel string
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{currentModel: modelName}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// NewStreamingMock returns a provider that streams chunks in order
func NewStreamingMock(modelName string, chunks ...string) *MockProvider {
	mock := NewMockProvider(modelName)
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
		for _, chunk := range chunks {
			if err := callback(chunk); err != nil {
				return err
			}
		}
		return nil
	}
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	if len(messages) > 0 && callback != nil {
		return callback("Mock response")
	}
	return nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	m.LastMessages = messages
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) GetDisplayName() string {
	if idx := strings.Index(m.currentModel, "/"); idx != -1 {
		return m.currentModel[idx+1:]
	}
	return m.currentModel
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
