package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"treechat/config"
	"treechat/model"
)

const (
	defaultRemoteConversation = "default"

	// Error bodies larger than this are truncated before being reported.
	maxErrorBody = 4 * 1024

	// Bounds a single SSE line.
	maxFrameSize = 64 * 1024
)

// Frame types sent by the chat endpoint
const (
	frameToken = "token"
	frameError = "error"
	frameDone  = "done"
)

// Remote is a client for a hosted chat service that stores the conversation
// server-side. It implements model.Completer and model.HistorySource.
type Remote struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	conversation string
}

type remoteMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

type remoteChatRequest struct {
	Content string `json:"content"`
}

type remoteFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	MessageID string `json:"messageId,omitempty"`
}

type remoteErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewRemote creates a client for baseURL. The timeout of each call comes from
// the caller's context; the HTTP client itself has none.
func NewRemote(baseURL, apiKey, conversation string) (*Remote, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote URL %q: scheme must be http or https", baseURL)
	}
	if conversation == "" {
		conversation = defaultRemoteConversation
	}

	return &Remote{
		httpClient:   &http.Client{},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		conversation: conversation,
	}, nil
}

func (r *Remote) BaseURL() string {
	return r.baseURL
}

func (r *Remote) Conversation() string {
	return r.conversation
}

func (r *Remote) sessionURL(suffix string) string {
	return fmt.Sprintf("%s/api/v1/ai/sessions/%s/%s", r.baseURL, url.PathEscape(r.conversation), suffix)
}

func (r *Remote) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	return req, nil
}

// GetConversationHistory fetches the stored conversation, oldest first
func (r *Remote) GetConversationHistory(ctx context.Context) ([]model.Message, error) {
	req, err := r.newRequest(ctx, http.MethodGet, r.sessionURL("messages"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readStatusError(resp)
	}

	var payload []remoteMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	messages := make([]model.Message, len(payload))
	for i, msg := range payload {
		messages[i] = model.Message{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.CreatedTs > 0 {
			messages[i].Timestamp = time.Unix(msg.CreatedTs, 0)
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Remote] Loaded %d messages for %s", len(messages), r.conversation)
	}
	return messages, nil
}

// SendMessage posts text and accumulates the streamed reply. history is not
// sent; the service already holds the conversation.
func (r *Remote) SendMessage(ctx context.Context, history []model.Message, text string) (model.Message, error) {
	body, err := json.Marshal(remoteChatRequest{Content: text})
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, r.sessionURL("chat"), bytes.NewReader(body))
	if err != nil {
		return model.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.Message{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return model.Message{}, readStatusError(resp)
	}

	reply, messageID, err := readChatStream(resp.Body)
	if err != nil {
		return model.Message{}, err
	}

	msg := model.NewMessage(model.RoleAssistant, reply, time.Now())
	if messageID != "" {
		msg.ID = messageID
	}
	return msg, nil
}

// readChatStream concatenates token frames until a done frame or EOF
func readChatStream(body io.Reader) (string, string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	var (
		reply     strings.Builder
		messageID string
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data:") {
			// Blank separators, comments and other SSE fields.
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var frame remoteFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return "", "", fmt.Errorf("failed to decode stream frame: %w", err)
		}

		switch frame.Type {
		case frameToken:
			reply.WriteString(frame.Content)
		case frameError:
			return "", "", &RemoteError{Status: http.StatusOK, Message: frame.Content}
		case frameDone:
			if frame.MessageID != "" {
				messageID = frame.MessageID
			}
			return reply.String(), messageID, nil
		default:
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Remote] Ignoring %q frame", frame.Type)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read stream: %w", err)
	}
	return reply.String(), messageID, nil
}

func readStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(data))
	var body remoteErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Message != "":
			message = body.Message
		case body.Error != "":
			message = body.Error
		}
	}

	err := statusError(resp.StatusCode, message)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Remote] %s %s: %v", resp.Request.Method, resp.Request.URL.Path, err)
	}
	return err
}

// IsRemoteError reports whether err carries a RemoteError and returns it
func IsRemoteError(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}
