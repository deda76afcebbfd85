package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.keys

	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("TreeChat - Keyboard Shortcuts")
	if a.version != "" {
		title += DimStyle.Render(" " + a.version)
	}

	blue := lipgloss.NewStyle().Foreground(accentColor)

	conversation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Conversation"),
		fmt.Sprintf("• %-13s Send message", kb.DisplayActionKey("send")),
		"• Alt+Enter     New line",
		fmt.Sprintf("• %-13s New conversation", kb.DisplayActionKey("new_conversation")),
		fmt.Sprintf("• %-13s Export as JSON", kb.DisplayActionKey("export")),
		fmt.Sprintf("• %-13s Clear input", kb.DisplayActionKey("clear_input")),
		fmt.Sprintf("• %-13s Start cooldown", kb.DisplayActionKey("rate_limit")),
		fmt.Sprintf("• %-13s Toggle this help", kb.DisplayActionKey("help")),
		fmt.Sprintf("• %-13s Quit", kb.DisplayActionKey("quit")),
	)

	transcript := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Transcript"),
		fmt.Sprintf("• %-13s Scroll down 1 line", kb.DisplayActionKey("scroll_down")),
		fmt.Sprintf("• %-13s Scroll up 1 line", kb.DisplayActionKey("scroll_up")),
		fmt.Sprintf("• %-13s Page down", kb.DisplayActionKey("page_down")),
		fmt.Sprintf("• %-13s Page up", kb.DisplayActionKey("page_up")),
		fmt.Sprintf("• %-13s Copy last response", kb.DisplayActionKey("yank_last_response")),
	)

	saved := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Saved Messages"),
		fmt.Sprintf("• %-13s Save/unsave last reply", kb.DisplayActionKey("save_last_response")),
		fmt.Sprintf("• %-13s Open saved panel", kb.DisplayActionKey("saved_panel")),
		fmt.Sprintf("• %-13s Copy selected", kb.DisplayActionKey("saved_yank")),
		fmt.Sprintf("• %-13s Remove selected", kb.DisplayActionKey("saved_remove")),
		"• Type          Filter (fuzzy)",
	)

	column1 := lipgloss.JoinVertical(lipgloss.Left, conversation)
	column2 := lipgloss.JoinVertical(lipgloss.Left, transcript, "", saved)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"  ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(96)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
