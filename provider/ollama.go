package provider

import (
	"context"
	"fmt"

	"treechat/model"
	"treechat/ollama"
)

// OllamaProvider adapts ollama.Client to model.Provider.
//
// Conversation messages are mapped field by field; Ollama accepts the same
// role names the transcript uses, so no role translation is needed.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a provider for a local or remote Ollama server.
// Empty baseURL and model fall back to ollama.DefaultBaseURL and
// ollama.DefaultModel.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{client: client}, nil
}

func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	var ollamaCallback ollama.StreamCallback
	if callback != nil {
		ollamaCallback = func(chunk string) error {
			return callback(chunk)
		}
	}

	if err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), ollamaCallback); err != nil {
		return classifyOllamaError(err)
	}
	return nil
}

func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// GetDisplayName returns the model name; Ollama names carry no vendor prefix
func (p *OllamaProvider) GetDisplayName() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
