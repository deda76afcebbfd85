package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"treechat/config"
)

const bannerArt = ` _____              ____ _           _
|_   _| __ ___  ___/ ___| |__   __ _| |_
  | || '__/ _ \/ _ \ |   | '_ \ / _' | __|
  | || | |  __/  __/ |___| | | | (_| | |_
  |_||_|  \___|\___|\____|_| |_|\__,_|\__|`

// renderLanding draws the new-conversation landing view
func renderLanding(kb *config.KeyBindingsConfig, width, height int) string {
	var sb strings.Builder

	for _, line := range strings.Split(bannerArt, "\n") {
		sb.WriteString(UserStyle.Render(line))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(TitleStyle.Render("Start a new conversation"))
	sb.WriteString("\n\n")

	tips := []string{
		"Type a message and press " + kb.DisplayActionKey("send") + " to send it",
		kb.DisplayActionKey("save_last_response") + " saves the latest reply, " + kb.DisplayActionKey("saved_panel") + " browses saved messages",
		kb.DisplayActionKey("help") + " shows every shortcut",
	}
	for _, tip := range tips {
		sb.WriteString(DimStyle.Render("• " + tip))
		sb.WriteString("\n")
	}

	content := lipgloss.NewStyle().Align(lipgloss.Left).Render(strings.TrimSuffix(sb.String(), "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
