package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treechat/model"
	"treechat/provider/testutil"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	remote, err := NewRemote(server.URL, "secret", "conv 1")
	require.NoError(t, err)
	return remote
}

func TestNewRemoteValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"missing", "", true},
		{"bad scheme", "ftp://example.com", true},
		{"http", "http://localhost:8081", false},
		{"https with trailing slash", "https://chat.example.com/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote, err := NewRemote(tt.baseURL, "", "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "default", remote.Conversation())
			assert.False(t, strings.HasSuffix(remote.BaseURL(), "/"))
		})
	}
}

func TestRemoteGetConversationHistory(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/ai/sessions/conv 1/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": "m1", "role": "user", "content": "hi", "createdTs": 1740819600},
			{"id": "m2", "role": "assistant", "content": "hello"}
		]`)
	})

	messages, err := remote.GetConversationHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, model.Message{ID: "m1", Role: "user", Content: "hi", Timestamp: time.Unix(1740819600, 0)}, messages[0])
	assert.Equal(t, "assistant", messages[1].Role)
	assert.True(t, messages[1].Timestamp.IsZero())
}

func TestRemoteGetConversationHistoryEmpty(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	messages, err := remote.GetConversationHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRemoteStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		wantIs error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message": "invalid token"}`, ErrAuthFailed},
		{"not found", http.StatusNotFound, `{"error": "no such session"}`, ErrConversationNotFound},
		{"rate limited", http.StatusTooManyRequests, `quota exceeded`, model.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := remote.GetConversationHistory(context.Background())
			assert.ErrorIs(t, err, tt.wantIs)

			_, err = remote.SendMessage(context.Background(), nil, "hello")
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestRemoteServerErrorMessage(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "model crashed"}`)
	})

	_, err := remote.SendMessage(context.Background(), nil, "hello")
	remoteErr, ok := IsRemoteError(err)
	require.True(t, ok, "expected RemoteError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.Status)
	assert.Equal(t, "model crashed", remoteErr.Message)
}

func TestRemoteSendMessageStreams(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/ai/sessions/conv 1/chat", r.URL.Path)

		var req remoteChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is the capital of France?", req.Content)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, testutil.SSEStream(
			`{"type": "token", "content": "Paris "}`,
			`{"type": "thinking", "content": "ignored"}`,
			`{"type": "token", "content": "is the capital."}`,
			`{"type": "done", "messageId": "srv-42"}`,
			`{"type": "token", "content": "after done"}`,
		))
	})

	reply, err := remote.SendMessage(context.Background(), testutil.TestMessages(), "What is the capital of France?")
	require.NoError(t, err)

	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, "Paris is the capital.", reply.Content)
	assert.Equal(t, "srv-42", reply.ID)
	assert.False(t, reply.Timestamp.IsZero())
}

func TestRemoteSendMessageWithoutDoneFrame(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testutil.SSEStream(`{"type": "token", "content": "partial"}`))
	})

	reply, err := remote.SendMessage(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "partial", reply.Content)
	assert.NotEmpty(t, reply.ID)
}

func TestRemoteSendMessageErrorFrame(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testutil.SSEStream(
			`{"type": "token", "content": "half"}`,
			`{"type": "error", "content": "context window exceeded"}`,
		))
	})

	_, err := remote.SendMessage(context.Background(), nil, "hi")
	remoteErr, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, "context window exceeded", remoteErr.Message)
}

func TestRemoteSendMessageBadFrame(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {not json}\n\n")
	})

	_, err := remote.SendMessage(context.Background(), nil, "hi")
	assert.ErrorContains(t, err, "failed to decode stream frame")
}

func TestRemoteHonorsContext(t *testing.T) {
	release := make(chan struct{})
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := remote.SendMessage(ctx, nil, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestRemoteWithoutAPIKeySendsNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	remote, err := NewRemote(server.URL, "", "c")
	require.NoError(t, err)
	_, err = remote.GetConversationHistory(context.Background())
	assert.NoError(t, err)
}
