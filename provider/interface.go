// Package provider supplies the completion backends behind the chat controller.
//
// Two kinds of backend exist:
//
//   - Streaming LLM providers (Ollama, OpenAI, OpenRouter, Anthropic) that
//     implement model.Provider. They know nothing about conversations, so they
//     are wrapped in a Service that keeps history in a local store.
//   - Remote, a client for a hosted chat service that owns the conversation
//     itself and exposes history and completion endpoints.
//
// Both end up as a model.Completer plus a model.HistorySource; NewBackend
// picks one from Config.
package provider

// The Provider interface and StreamCallback live in the model package
// (model/provider.go) so that this package can import model without a cycle.

// ProviderType identifies the backend implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeRemote     ProviderType = "remote"
)

// Config holds backend configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Unused for Ollama

	// Conversation scopes history and completion calls
	Conversation string
	SystemPrompt string
}
