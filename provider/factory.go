package provider

import (
	"fmt"

	"treechat/config"
	"treechat/model"
	"treechat/storage"
)

// NewProvider creates a streaming LLM provider from cfg.
//
// ProviderTypeRemote is not a streaming provider and is rejected here; use
// NewBackend for it.
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeRemote:
		return nil, fmt.Errorf("provider type %q has no streaming provider", cfg.Type)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// Backend is what the chat controller needs from a provider
type Backend interface {
	model.Completer
	model.HistorySource
}

// NewBackend creates the controller's completion and history backend.
// store is only used by local providers and may be nil for remote.
func NewBackend(cfg Config, store *storage.ConversationStore) (Backend, error) {
	if cfg.Type == ProviderTypeRemote {
		remote, err := NewRemote(cfg.BaseURL, cfg.APIKey, cfg.Conversation)
		if err != nil {
			return nil, err
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Using remote service %s (conversation %s)", remote.BaseURL(), cfg.Conversation)
		}
		return remote, nil
	}

	if store == nil {
		return nil, fmt.Errorf("provider type %s requires a conversation store", cfg.Type)
	}
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Using %s provider with model %s", cfg.Type, p.GetModel())
	}
	return NewService(p, store, cfg.Conversation, cfg.SystemPrompt), nil
}

// MapProviderIDToType converts a config provider ID to a ProviderType.
// Unknown IDs pass through unchanged and fail in the factory.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "remote":
		return ProviderTypeRemote
	default:
		return ProviderType(id)
	}
}
