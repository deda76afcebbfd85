package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "treechat/model"
)

const savedPanelWidth = 80

func (a AppView) savedList() []appmodel.SavedMessage {
	return a.dataModel.Bookmarks().Search(a.savedFilterInput.Value())
}

func (a AppView) handleSavedPanelKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	kb := a.keys
	keyStr := msg.String()

	switch keyStr {
	case kb.GetActionKey("close_saved_panel"), kb.GetActionKey("saved_panel"):
		a.showSaved = false
		a.savedFilterInput.Blur()
		return a, nil

	case kb.GetActionKey("saved_down"):
		if a.selectedSavedIdx < len(a.savedList())-1 {
			a.selectedSavedIdx++
		}
		return a, nil

	case kb.GetActionKey("saved_up"):
		if a.selectedSavedIdx > 0 {
			a.selectedSavedIdx--
		}
		return a, nil

	case kb.GetActionKey("saved_remove"):
		list := a.savedList()
		if a.selectedSavedIdx >= len(list) {
			return a, nil
		}
		a.dataModel.Bookmarks().Remove(list[a.selectedSavedIdx].ID)
		if a.selectedSavedIdx >= len(list)-1 && a.selectedSavedIdx > 0 {
			a.selectedSavedIdx--
		}
		a.updateViewportContent(false)
		flashCmd := a.setFlash("Message removed from saved", appmodel.NotifyUnsaved)
		return a, flashCmd

	case kb.GetActionKey("saved_yank"):
		list := a.savedList()
		if a.selectedSavedIdx >= len(list) {
			return a, nil
		}
		flashCmd := a.copyToClipboard(list[a.selectedSavedIdx].Content, "Copied saved message")
		return a, flashCmd
	}

	var cmd tea.Cmd
	a.savedFilterInput, cmd = a.savedFilterInput.Update(msg)

	if list := a.savedList(); a.selectedSavedIdx >= len(list) {
		a.selectedSavedIdx = max(len(list)-1, 0)
	}
	return a, cmd
}

func (a AppView) renderSavedPanel(width, height int) string {
	modalWidth := savedPanelWidth
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	all := a.dataModel.Bookmarks().Len()
	list := a.savedList()

	var lines []string
	lines = append(lines, a.savedFilterInput.View())
	if len(list) == all {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("%d saved", all)))
	} else {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("%d of %d saved", len(list), all)))
	}
	lines = append(lines, "")

	if len(list) == 0 {
		emptyMsg := "No saved messages"
		if a.savedFilterInput.Value() != "" {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	}

	// Two lines per entry
	maxEntries := (height - 14) / 2
	if maxEntries < 1 {
		maxEntries = 1
	}
	startIdx := 0
	if a.selectedSavedIdx >= maxEntries {
		startIdx = a.selectedSavedIdx - maxEntries + 1
	}

	for i := startIdx; i < len(list) && i < startIdx+maxEntries; i++ {
		saved := list[i]

		indicator := "  "
		header := fmt.Sprintf("%s · %s", saved.Topic, saved.SavedAt.Format("Jan 02 15:04"))
		if i == a.selectedSavedIdx {
			indicator = "▶ "
			header = SelectedStyle.Render(header)
		} else {
			header = TitleStyle.Render(header)
		}

		lines = append(lines, indicator+header)
		lines = append(lines, "  "+DimStyle.Render(truncate(saved.Content, modalWidth-4)))
	}

	kb := a.keys
	footer := FormatFooter(
		kb.DisplayActionKey("saved_down")+"/"+kb.DisplayActionKey("saved_up"), "Navigate",
		kb.DisplayActionKey("saved_yank"), "Copy",
		kb.DisplayActionKey("saved_remove"), "Remove",
		kb.DisplayActionKey("close_saved_panel"), "Close",
	)

	return RenderThreeSectionModal("Saved Messages", lines, footer, ModalTypeInfo, modalWidth, width, height)
}
