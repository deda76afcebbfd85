package provider_test

import (
	"context"
	"testing"
	"time"

	"treechat/model"
	"treechat/provider/testutil"
)

// TestProviderContract defines the behavior every streaming provider must have.
// Live providers need a server and are exercised manually with `treechat models`.
func TestProviderContract(t *testing.T) {
	tests := []struct {
		name     string
		provider model.Provider
	}{
		{"Mock", testutil.NewMockProvider("test-model")},
		{"StreamingMock", testutil.NewStreamingMock("vendor/test-model", "a", "b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("BasicChat", func(t *testing.T) {
				testProviderBasicChat(t, tt.provider)
			})
			t.Run("ModelManagement", func(t *testing.T) {
				testProviderModelManagement(t, tt.provider)
			})
			t.Run("HealthCheck", func(t *testing.T) {
				testProviderHealthCheck(t, tt.provider)
			})
		})
	}
}

func testProviderBasicChat(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var chunks []string
	err := p.Chat(ctx, testutil.SingleUserMessage("Hello"), func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Errorf("Chat() error = %v", err)
	}
	if len(chunks) == 0 {
		t.Error("Chat() did not receive any chunks")
	}
}

func testProviderModelManagement(t *testing.T, p model.Provider) {
	if got := p.GetModel(); got == "" {
		t.Error("GetModel() returned empty string")
	}
	if got := p.GetDisplayName(); got == "" {
		t.Error("GetDisplayName() returned empty string")
	}

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Errorf("ListModels() error = %v", err)
	}
	if len(models) == 0 {
		t.Error("ListModels() returned no models")
	}
}

func testProviderHealthCheck(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
