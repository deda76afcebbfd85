package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"treechat/config"
	"treechat/model"
	"treechat/provider"
	"treechat/provider/testutil"
	"treechat/storage"
)

func TestProviderConfig(t *testing.T) {
	tests := []struct {
		name        string
		providerID  string
		baseURL     string
		wantType    provider.ProviderType
		wantBaseURL string
	}{
		{"ollama keeps default url", "ollama", config.DefaultBaseURL, provider.ProviderTypeOllama, config.DefaultBaseURL},
		{"openai drops ollama url", "openai", config.DefaultBaseURL, provider.ProviderTypeOpenAI, ""},
		{"remote keeps custom url", "remote", "https://chat.example.com", provider.ProviderTypeRemote, "https://chat.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.ProviderType = tt.providerID
			cfg.BaseURL = tt.baseURL
			cfg.APIKey = "key"

			got := providerConfig(cfg)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %q, want %q", got.BaseURL, tt.wantBaseURL)
			}
			if got.APIKey != "key" || got.Conversation != config.DefaultConversation {
				t.Errorf("credentials or conversation not carried over: %+v", got)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "-"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{4661211808, "4.3 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.in); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type historyOnlyBackend struct{}

func (historyOnlyBackend) SendMessage(ctx context.Context, history []model.Message, text string) (model.Message, error) {
	return model.Message{}, nil
}

func (historyOnlyBackend) GetConversationHistory(ctx context.Context) ([]model.Message, error) {
	return nil, nil
}

func TestPingBackend(t *testing.T) {
	store, err := storage.NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	healthy := testutil.NewMockProvider("llama3.1")
	if err := pingBackend(context.Background(), provider.NewService(healthy, store, "c", "")); err != nil {
		t.Errorf("pingBackend(healthy) = %v", err)
	}

	refused := errors.New("connection refused")
	down := testutil.NewMockProvider("llama3.1")
	down.PingFunc = func(ctx context.Context) error { return refused }
	err = pingBackend(context.Background(), provider.NewService(down, store, "c", ""))
	if !errors.Is(err, refused) {
		t.Errorf("pingBackend(down) = %v, want wrapped %v", err, refused)
	}

	if err := pingBackend(context.Background(), historyOnlyBackend{}); err != nil {
		t.Errorf("pingBackend(no provider) = %v, want nil", err)
	}
}

func TestListConversations(t *testing.T) {
	store, err := storage.NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	var out bytes.Buffer
	if err := listConversations(ctx, &out, store, "daily"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No stored conversations") {
		t.Errorf("empty store output = %q", out.String())
	}

	svc := provider.NewService(testutil.NewStreamingMock("llama3.1", "ok"), store, "daily", "")
	if _, err := svc.SendMessage(ctx, nil, "hi"); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := listConversations(ctx, &out, store, "daily"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1:\n%s", len(lines), out.String())
	}
	fields := strings.Fields(lines[1])
	if fields[0] != "daily" || fields[1] != "llama3.1" || fields[2] != "2" || fields[len(fields)-1] != "*" {
		t.Errorf("row = %q", lines[1])
	}
}
