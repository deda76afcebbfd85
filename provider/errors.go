package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"treechat/model"
)

var (
	// ErrAuthFailed is returned when the service rejects the credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrConversationNotFound is returned when the conversation ID is unknown to the service
	ErrConversationNotFound = errors.New("conversation not found")
)

// RemoteError is a non-success response that has no more specific mapping
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

// statusError maps an HTTP status to the error the chat controller acts on.
// 429 wraps model.ErrRateLimited so the controller closes its gate.
func statusError(status int, message string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			return ErrAuthFailed
		}
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	case http.StatusNotFound:
		if message == "" {
			return ErrConversationNotFound
		}
		return fmt.Errorf("%w: %s", ErrConversationNotFound, message)
	case http.StatusTooManyRequests:
		if message == "" {
			return model.ErrRateLimited
		}
		return fmt.Errorf("%w: %s", model.ErrRateLimited, message)
	default:
		return &RemoteError{Status: status, Message: message}
	}
}

// classifySDKStatus wraps an SDK error so auth and rate-limit failures can be
// matched with errors.Is. Other statuses keep the SDK error as is.
func classifySDKStatus(status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", model.ErrRateLimited, err)
	default:
		return err
	}
}

func classifyOllamaError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return classifySDKStatus(statusErr.StatusCode, err)
	}
	return err
}

func classifyOpenAIError(label string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		err = classifySDKStatus(apiErr.StatusCode, err)
	}
	return fmt.Errorf("%s streaming error: %w", label, err)
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		err = classifySDKStatus(apiErr.StatusCode, err)
	}
	return fmt.Errorf("Anthropic streaming error: %w", err)
}
