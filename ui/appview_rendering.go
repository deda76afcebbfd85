package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"treechat/config"
	appmodel "treechat/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const codeBlockBar = "┃"

func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.dataModel.Messages()
	bookmarks := a.dataModel.Bookmarks()

	var content strings.Builder
	for _, msg := range messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		savedMarker := ""
		if bookmarks.IsSaved(msg.Content) {
			savedMarker = " " + HighlightStyle.Render("★")
		}

		switch msg.Role {
		case appmodel.RoleUser:
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You")+savedMarker, msg.Content))
		case appmodel.RoleAssistant:
			body := msg.Content
			if rendered, ok := a.rendered[msg.ID]; ok {
				body = rendered
			}
			content.WriteString(fmt.Sprintf("%s %s%s\n%s\n\n", timestamp, AssistantStyle.Render("Assistant"), savedMarker, body))
		}
	}

	if a.dataModel.State() == appmodel.Sending {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		content.WriteString(fmt.Sprintf("%s %s\n%s Waiting for response...\n\n", timestamp, AssistantStyle.Render("Assistant"), a.loadingSpinner.View()))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderPendingMarkdown schedules a render for every assistant message that
// has none at the current width
func (a *AppView) renderPendingMarkdown() []tea.Cmd {
	if a.renderWidth <= 0 {
		return nil
	}

	var cmds []tea.Cmd
	for _, msg := range a.dataModel.Messages() {
		if msg.Role != appmodel.RoleAssistant || a.renderRequested[msg.ID] {
			continue
		}
		a.renderRequested[msg.ID] = true
		cmds = append(cmds, renderMarkdownAsync(msg.ID, msg.Content, a.renderWidth))
	}
	return cmds
}

func renderMarkdownAsync(messageID, content string, width int) tea.Cmd {
	return func() tea.Msg {
		startTime := time.Now()
		processed := renderMarkdown(content, width)

		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Markdown for message %s rendered in %v (%d chars)", messageID, time.Since(startTime), len(content))
		}

		return markdownRenderedMsg{
			MessageID: messageID,
			Width:     width,
			Rendered:  processed,
		}
	}
}

func renderMarkdown(content string, width int) string {
	content = preprocessLinks(content)

	// Autolink stays off so plain URLs remain clickable in the terminal
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return postProcessMarkdown(string(rendered), width)
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks turns [text](url) into the bare url
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue-background inline code style for red text
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, codeBlockBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	ruleWidth := width - 4
	if ruleWidth < 8 {
		ruleWidth = 8
	}
	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		result = append(result, darkGray+strings.Repeat("━", ruleWidth)+reset)
		result = append(result, "")
		codeBlockLines = nil
		inCodeBlock = false
	}

	for _, line := range lines {
		if strings.Contains(line, codeBlockBar) {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, "")

				label := "[code]"
				leftLen := (ruleWidth - len(label)) / 2
				rightLen := ruleWidth - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}
			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
		}
		result = append(result, line)
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBlockBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBlockBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	if after < len(line) {
		return line[after:]
	}
	return ""
}
