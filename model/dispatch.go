package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"treechat/config"
)

// dispatch occupies the single in-flight slot. Results are reconciled by ID
// so a response that arrives after Clear cannot land in the new conversation.
type dispatch struct {
	id        string
	text      string
	abandoned bool
}

// InFlightID returns the correlation ID of the outstanding request, if any
func (m *Model) InFlightID() string {
	if m.inFlight == nil {
		return ""
	}
	return m.inFlight.id
}

// Send turns user text into an optimistic transcript entry and returns the
// command that performs the completion call. In order: the user message is
// appended, the draft is cleared, the pipeline enters Sending, and the
// returned command calls the completer with the trimmed text.
//
// Rejections leave the transcript untouched: ErrEmptyMessage for blank
// text, ErrDispatchInFlight while Sending, and ErrRateLimited while the gate
// is closed (a notice with the remaining cooldown is queued). Only the
// ErrRateLimited rejection for a spent usage allowance returns a command: it
// closes the gate, and the command drives the countdown.
func (m *Model) Send(text string) (tea.Cmd, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if m.inFlight != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Dispatch] Rejected send while request %s is in flight", m.inFlight.id)
		}
		return nil, ErrDispatchInFlight
	}
	if !m.gate.IsOpen() {
		m.notify(NotifyRateLimited, fmt.Sprintf("You've reached the usage limit. Try again in %s.", m.gate.Countdown()))
		return nil, ErrRateLimited
	}

	if m.usage != nil && !m.usage.Record() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Dispatch] Rejected send, usage allowance spent")
		}
		return m.closeGate("usage limit"), ErrRateLimited
	}

	history := m.transcript.Messages()
	if err := m.transcript.Append(NewMessage(RoleUser, trimmed, m.now())); err != nil {
		return nil, err
	}
	m.view = ViewTranscript
	m.draft = ""

	req := &dispatch{
		id:   uuid.New().String(),
		text: trimmed,
	}
	m.inFlight = req

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatch] Request %s started (%d chars, %d prior messages)", req.id, len(trimmed), len(history))
	}

	completer := m.completer
	timeout := m.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		startTime := time.Now()
		reply, err := completer.SendMessage(ctx, history, req.text)
		elapsed := time.Since(startTime)

		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrDispatchTimeout) {
				err = fmt.Errorf("%w after %v: %w", ErrDispatchTimeout, timeout, err)
			}
			return CompletionErrorMsg{RequestID: req.id, Err: err}
		}
		return CompletionDoneMsg{RequestID: req.id, Reply: reply, Elapsed: elapsed}
	}, nil
}

// settle frees the in-flight slot if requestID owns it. Returns the dispatch and
// whether its result should be applied to the transcript.
func (m *Model) settle(requestID string) (*dispatch, bool) {
	if m.inFlight == nil || m.inFlight.id != requestID {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Dispatch] Ignoring result for unknown request %s", requestID)
		}
		return nil, false
	}
	req := m.inFlight
	m.inFlight = nil
	return req, !req.abandoned
}

func (m *Model) handleCompletionDone(msg CompletionDoneMsg) tea.Cmd {
	req, apply := m.settle(msg.RequestID)
	if req == nil {
		return nil
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatch] Request %s completed in %v (%d chars)", req.id, msg.Elapsed, len(msg.Reply.Content))
	}

	if apply {
		reply := msg.Reply
		reply.Role = RoleAssistant
		if reply.ID == "" {
			reply.ID = uuid.New().String()
		}
		if reply.Timestamp.IsZero() {
			reply.Timestamp = m.now()
		}
		// Assistant messages are never rejected by the transcript.
		_ = m.transcript.Append(reply)
		m.lastErr = nil
	}

	return m.checkUsage()
}

func (m *Model) handleCompletionError(msg CompletionErrorMsg) tea.Cmd {
	req, apply := m.settle(msg.RequestID)
	if req == nil {
		return nil
	}
	if !apply {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Dispatch] Dropping error for abandoned request %s: %v", req.id, msg.Err)
		}
		return m.checkUsage()
	}

	dispatchErr := &DispatchError{RequestID: req.id, Err: msg.Err}
	m.lastErr = dispatchErr
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatch] Request %s failed: %v", req.id, msg.Err)
	}

	if errors.Is(msg.Err, ErrRateLimited) {
		return m.closeGate("remote usage threshold")
	}

	m.notify(NotifyDispatchError, dispatchErr.Error())
	return m.checkUsage()
}

func (m *Model) checkUsage() tea.Cmd {
	if m.usage == nil || !m.usage.Exhausted() {
		return nil
	}
	return m.closeGate("usage limit")
}
