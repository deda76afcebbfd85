package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"treechat/config"
	"treechat/model"
	"treechat/storage"
)

// Service composes a streaming provider and a local conversation store into
// the completion and history calls the chat controller consumes.
//
// Methods are safe to call from tea.Cmd goroutines.
type Service struct {
	provider     model.Provider
	store        *storage.ConversationStore
	systemPrompt string

	mu           sync.Mutex
	conversation string
}

// NewService creates a Service. An empty conversation generates a new ID.
func NewService(p model.Provider, store *storage.ConversationStore, conversation, systemPrompt string) *Service {
	if conversation == "" {
		conversation = uuid.New().String()
	}
	return &Service{
		provider:     p,
		store:        store,
		systemPrompt: systemPrompt,
		conversation: conversation,
	}
}

// Provider returns the wrapped streaming provider
func (s *Service) Provider() model.Provider {
	return s.provider
}

// Conversation returns the ID the service currently reads and writes
func (s *Service) Conversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// StartConversation switches to a fresh conversation ID and returns it.
// Requests already in flight keep writing to the conversation they began in.
func (s *Service) StartConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = uuid.New().String()
	return s.conversation
}

// SendMessage streams a reply to text given the prior history and persists
// the user/assistant pair once the reply is complete.
func (s *Service) SendMessage(ctx context.Context, history []model.Message, text string) (model.Message, error) {
	conversation := s.Conversation()
	sentAt := time.Now()

	messages := s.buildMessages(history, text)

	var reply strings.Builder
	err := s.provider.Chat(ctx, messages, func(chunk string) error {
		reply.WriteString(chunk)
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}

	assistant := model.NewMessage(model.RoleAssistant, reply.String(), time.Now())

	// Persistence failures do not fail the exchange.
	if err := s.persist(ctx, conversation, text, sentAt, assistant); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Service] Failed to persist exchange in %s: %v", conversation, err)
	}

	return assistant, nil
}

func (s *Service) persist(ctx context.Context, conversation, text string, sentAt time.Time, reply model.Message) error {
	if _, err := s.store.EnsureConversation(ctx, conversation, s.provider.GetModel()); err != nil {
		return err
	}
	return s.store.AppendMessages(ctx, conversation,
		storage.StoredMessage{Role: model.RoleUser, Content: text, CreatedAt: sentAt},
		storage.StoredMessage{ID: reply.ID, Role: model.RoleAssistant, Content: reply.Content, CreatedAt: reply.Timestamp},
	)
}

// GetConversationHistory reads the current conversation from the store
func (s *Service) GetConversationHistory(ctx context.Context) ([]model.Message, error) {
	conversation := s.Conversation()

	stored, err := s.store.ListMessages(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation %s: %w", conversation, err)
	}

	messages := make([]model.Message, len(stored))
	for i, msg := range stored {
		messages[i] = model.Message{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		}
	}
	return messages, nil
}

// Export writes the current conversation as JSON under dir and returns the path
func (s *Service) Export(ctx context.Context, dir string) (string, error) {
	conversation := s.Conversation()

	stored, err := s.store.ListMessages(ctx, conversation)
	if err != nil {
		return "", fmt.Errorf("failed to read conversation %s: %w", conversation, err)
	}

	now := time.Now()
	path := storage.GenerateExportPath(dir, conversation, now)
	export := storage.TranscriptExport{
		Conversation: conversation,
		Model:        s.provider.GetModel(),
		ExportedAt:   now.UTC(),
		Messages:     stored,
	}

	// Prefer the model the conversation was started with
	meta, err := s.store.GetConversation(ctx, conversation)
	switch {
	case err == nil:
		export.StartedAt = meta.CreatedAt.UTC()
		if meta.Model != "" {
			export.Model = meta.Model
		}
	case !errors.Is(err, storage.ErrConversationNotFound):
		return "", err
	}
	if err := storage.ExportToJSON(export, path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) buildMessages(history []model.Message, text string) []model.Message {
	messages := make([]model.Message, 0, len(history)+2)
	if s.systemPrompt != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: s.systemPrompt})
	}
	for _, msg := range history {
		if msg.IsConversational() {
			messages = append(messages, msg)
		}
	}
	return append(messages, model.Message{Role: model.RoleUser, Content: text})
}
