package model

import (
	"context"

	"treechat/ollama"
)

// Completer is the remote completion call consumed by the dispatch pipeline.
// history is the transcript as it stood before text was appended.
// Errors should carry a human-readable message; wrapping ErrRateLimited
// signals that the service's usage threshold was hit.
type Completer interface {
	SendMessage(ctx context.Context, history []Message, text string) (Message, error)
}

// HistorySource is the remote conversation history call consumed by the
// history loader. An empty slice is a valid, non-error result.
type HistorySource interface {
	GetConversationHistory(ctx context.Context) ([]Message, error)
}

// Provider abstracts streaming LLM backends (Ollama, OpenAI, OpenRouter, Anthropic).
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and model can describe
// the contract without importing the provider package.
type Provider interface {
	// Chat sends messages and streams responses back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the currently selected model name used for API calls.
	GetModel() string

	// GetDisplayName returns the model name formatted for UI display.
	// For OpenRouter, this strips the vendor prefix (e.g., "qwen/qwen3-coder:free" → "qwen3-coder:free").
	GetDisplayName() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response.
type StreamCallback func(chunk string) error
