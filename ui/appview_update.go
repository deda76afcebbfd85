package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"treechat/config"
	appmodel "treechat/model"
	"treechat/storage"
)

const exportTimeout = 30 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.ready = true

		if a.renderWidth != a.width {
			a.renderWidth = a.width
			a.rendered = make(map[string]string)
			a.renderRequested = make(map[string]bool)
		}
		a.updateViewportContent(true)
		cmds = append(cmds, a.renderPendingMarkdown()...)

	case tea.KeyMsg:
		var cmd tea.Cmd
		a, cmd = a.handleKey(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		// Keep ticking only while a reply is outstanding
		if a.dataModel.State() == appmodel.Sending {
			var cmd tea.Cmd
			a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
			a.updateViewportContent(false)
			cmds = append(cmds, cmd)
		}

	case appmodel.CompletionDoneMsg, appmodel.CompletionErrorMsg, appmodel.HistoryLoadedMsg:
		cmds = append(cmds, a.dataModel.Update(msg))
		a.updateViewportContent(true)
		cmds = append(cmds, a.renderPendingMarkdown()...)

	case appmodel.CooldownTickMsg:
		cmds = append(cmds, a.dataModel.Update(msg))

	case markdownRenderedMsg:
		if msg.Width == a.renderWidth {
			a.rendered[msg.MessageID] = msg.Rendered
			a.updateViewportContent(false)
		}

	case exportDoneMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Export failed: %v", msg.Err)
			}
			cmds = append(cmds, a.setFlash(fmt.Sprintf("Export failed: %v", msg.Err), appmodel.NotifyDispatchError))
		} else {
			cmds = append(cmds, a.setFlash("Exported to "+msg.Path, appmodel.NotifySaved))
		}

	case flashExpiredMsg:
		if msg.seq == a.flashSeq {
			a.flashText = ""
		}
	}

	cmds = append(cmds, a.drainNotifications())
	return a, tea.Batch(cmds...)
}

// drainNotifications moves queued controller notices onto the flash line
func (a *AppView) drainNotifications() tea.Cmd {
	notices := a.dataModel.Notifications()
	if len(notices) == 0 {
		return nil
	}

	texts := make([]string, len(notices))
	kind := notices[len(notices)-1].Kind
	for i, n := range notices {
		texts[i] = n.Text
		if n.Kind.IsError() {
			kind = n.Kind
		}
	}
	return a.setFlash(strings.Join(texts, " · "), kind)
}

func (a *AppView) setFlash(text string, kind appmodel.NotificationKind) tea.Cmd {
	a.flashSeq++
	a.flashText = text
	a.flashKind = kind

	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

func (a AppView) handleKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	keyStr := msg.String()
	kb := a.keys

	if msg.Type == tea.KeyCtrlC {
		a.dataModel.Shutdown()
		return a, tea.Quit
	}

	if a.showAcknowledgeModal {
		if keyStr == "enter" || keyStr == "esc" {
			a.showAcknowledgeModal = false
		}
		return a, nil
	}

	if a.showHelp {
		if keyStr == kb.GetActionKey("help") || keyStr == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showSaved {
		return a.handleSavedPanelKey(msg)
	}

	switch keyStr {
	case kb.GetActionKey("quit"):
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quit requested")
		}
		a.dataModel.Shutdown()
		return a, tea.Quit

	case kb.GetActionKey("send"):
		return a.sendDraft()

	case kb.GetActionKey("new_conversation"):
		return a.startNewConversation()

	case kb.GetActionKey("export"):
		if len(a.dataModel.Messages()) == 0 {
			flashCmd := a.setFlash("Nothing to export yet", appmodel.NotifyInfo)
			return a, flashCmd
		}
		return a, a.exportTranscript()

	case kb.GetActionKey("save_last_response"):
		last, ok := a.dataModel.Transcript().LastAssistant()
		if !ok {
			flashCmd := a.setFlash("No response to save yet", appmodel.NotifyInfo)
			return a, flashCmd
		}
		a.dataModel.ToggleSaved(last, "")
		a.updateViewportContent(false)
		return a, nil

	case kb.GetActionKey("yank_last_response"):
		last, ok := a.dataModel.Transcript().LastAssistant()
		if !ok {
			flashCmd := a.setFlash("No response to copy yet", appmodel.NotifyInfo)
			return a, flashCmd
		}
		flashCmd := a.copyToClipboard(last.Content, "Copied last response")
		return a, flashCmd

	case kb.GetActionKey("scroll_down"):
		a.viewport.SetYOffset(a.viewport.YOffset + 1)
		return a, nil

	case kb.GetActionKey("scroll_up"):
		a.viewport.SetYOffset(a.viewport.YOffset - 1)
		return a, nil

	case kb.GetActionKey("page_down"):
		a.viewport.PageDown()
		return a, nil

	case kb.GetActionKey("page_up"):
		a.viewport.PageUp()
		return a, nil

	case kb.GetActionKey("saved_panel"):
		a.showSaved = true
		a.selectedSavedIdx = 0
		a.savedFilterInput.SetValue("")
		a.savedFilterInput.Focus()
		return a, textinput.Blink

	case kb.GetActionKey("rate_limit"):
		return a, a.dataModel.TriggerRateLimit()

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		a.dataModel.SetDraft("")
		return a, nil

	case kb.GetActionKey("help"):
		a.showHelp = true
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	a.dataModel.SetDraft(a.textarea.Value())
	return a, cmd
}

// sendDraft dispatches the input field. The field is cleared only when the
// controller accepts the message.
func (a AppView) sendDraft() (AppView, tea.Cmd) {
	text := a.textarea.Value()
	a.dataModel.SetDraft(text)

	cmd, err := a.dataModel.Send(text)
	switch {
	case err == nil:
		a.textarea.Reset()
		a.updateViewportContent(true)
		return a, tea.Batch(cmd, a.loadingSpinner.Tick)
	case errors.Is(err, appmodel.ErrEmptyMessage):
		return a, nil
	case errors.Is(err, appmodel.ErrDispatchInFlight):
		flashCmd := a.setFlash("Still waiting for the previous reply", appmodel.NotifyInfo)
		return a, flashCmd
	default:
		// Rate-limit rejections queue their own notice and may start the countdown
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Send rejected: %v", err)
		}
		return a, cmd
	}
}

func (a AppView) startNewConversation() (AppView, tea.Cmd) {
	a.dataModel.Clear()
	a.textarea.Reset()
	a.updateViewportContent(true)

	if starter, ok := a.backend.(conversationStarter); ok {
		id := starter.StartConversation()
		if err := config.SaveConversation(a.cfg.DataDir(), id); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Failed to remember conversation %s: %v", id, err)
		}
	}

	flashCmd := a.setFlash("New conversation", appmodel.NotifyInfo)
	return a, flashCmd
}

// exportTranscript writes the conversation as JSON under the data directory.
// Backends that keep their own store export from it; otherwise the
// in-memory transcript is written.
func (a AppView) exportTranscript() tea.Cmd {
	dataDir := a.cfg.DataDir()

	if exporter, ok := a.backend.(transcriptExporter); ok {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
			defer cancel()
			path, err := exporter.Export(ctx, dataDir)
			return exportDoneMsg{Path: path, Err: err}
		}
	}

	conversation := a.conversationName()
	messages := a.dataModel.Messages()
	return func() tea.Msg {
		now := time.Now()
		export := storage.TranscriptExport{
			Conversation: conversation,
			ExportedAt:   now.UTC(),
			Messages:     make([]storage.StoredMessage, len(messages)),
		}
		for i, msg := range messages {
			export.Messages[i] = storage.StoredMessage{
				ID:             msg.ID,
				ConversationID: conversation,
				Role:           msg.Role,
				Content:        msg.Content,
				CreatedAt:      msg.Timestamp,
			}
		}

		path := storage.GenerateExportPath(dataDir, conversation, now)
		if err := storage.ExportToJSON(export, path); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Path: path}
	}
}

func (a *AppView) copyToClipboard(text, notice string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Clipboard write failed: %v", err)
		}
		return a.setFlash(fmt.Sprintf("Copy failed: %v", err), appmodel.NotifyDispatchError)
	}
	return a.setFlash(notice, appmodel.NotifySaved)
}
