package model

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"treechat/config"
)

// historyLoad tracks the one-shot history call so a result that arrives
// after Clear is dropped instead of refilling the new conversation.
type historyLoad int

const (
	historyIdle historyLoad = iota
	historyPending
	historyAbandoned
)

// LoadHistory hydrates the transcript from the history source. It runs once
// per Model; later calls return nil.
func (m *Model) LoadHistory() tea.Cmd {
	if m.historyLoaded {
		return nil
	}
	m.historyLoaded = true
	m.historyState = historyPending

	source := m.history
	timeout := m.requestTimeout
	return func() tea.Msg {
		if source == nil {
			return HistoryLoadedMsg{Err: ErrNoHistorySource}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		messages, err := source.GetConversationHistory(ctx)
		return HistoryLoadedMsg{Messages: messages, Err: err}
	}
}

func (m *Model) handleHistoryLoaded(msg HistoryLoadedMsg) {
	abandoned := m.historyState == historyAbandoned
	m.historyState = historyIdle
	if abandoned {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[History] Dropping %d messages loaded before the conversation was cleared", len(msg.Messages))
		}
		return
	}

	if msg.Err != nil {
		loadErr := &HistoryLoadError{Err: msg.Err}
		m.lastErr = loadErr
		if config.DebugLog != nil {
			config.DebugLog.Printf("[History] Load failed: %v", msg.Err)
		}
		// A missing source is a configuration choice, not something to report.
		if !errors.Is(msg.Err, ErrNoHistorySource) {
			m.notify(NotifyHistoryError, loadErr.Error())
		}
		return
	}

	var history []Message
	for _, hMsg := range msg.Messages {
		if hMsg.IsConversational() {
			history = append(history, hMsg)
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[History] Loaded %d messages (%d conversational)", len(msg.Messages), len(history))
	}

	if len(history) == 0 {
		return
	}
	m.transcript.ReplaceAll(history)
	m.view = ViewTranscript
}
