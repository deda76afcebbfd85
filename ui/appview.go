package ui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"treechat/config"
	appmodel "treechat/model"
	"treechat/provider"
)

// Optional backend capabilities, discovered by type assertion
type (
	conversationNamer interface {
		Conversation() string
	}
	conversationStarter interface {
		StartConversation() string
	}
	transcriptExporter interface {
		Export(ctx context.Context, dir string) (string, error)
	}
	providerHolder interface {
		Provider() appmodel.Provider
	}
	remoteEndpoint interface {
		BaseURL() string
	}
)

type AppView struct {
	// Reference to the chat session controller
	dataModel *appmodel.Model
	backend   provider.Backend
	cfg       *config.Config
	keys      *config.KeyBindingsConfig
	version   string

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp bool

	// Saved messages panel
	showSaved        bool
	savedFilterInput textinput.Model
	selectedSavedIdx int

	// Flash line for notifications
	flashText string
	flashKind appmodel.NotificationKind
	flashSeq  int

	// Acknowledge modal (startup warnings)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string

	// Markdown cache keyed by message ID, valid for renderWidth
	rendered        map[string]string
	renderRequested map[string]bool
	renderWidth     int
}

func NewAppView(cfg *config.Config, backend provider.Backend, version string) AppView {
	dataModel := appmodel.NewModel(backend, backend, appmodel.Options{
		CooldownWindow: cfg.Cooldown,
		RequestTimeout: cfg.RequestTimeout,
		UsageLimit:     cfg.UsageLimit,
		DefaultTopic:   cfg.DefaultTopic,
	})

	keys := cfg.Keybindings
	if keys == nil {
		keys = config.DefaultKeybindings()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	savedFilterInput := textinput.New()
	savedFilterInput.Prompt = "Filter: "
	savedFilterInput.CharLimit = 64

	a := AppView{
		dataModel:        dataModel,
		backend:          backend,
		cfg:              cfg,
		keys:             keys,
		version:          version,
		viewport:         viewport.New(0, 0),
		textarea:         ta,
		loadingSpinner:   sp,
		savedFilterInput: savedFilterInput,
		rendered:         make(map[string]string),
		renderRequested:  make(map[string]bool),
	}

	if valid, warning := keys.Validate(); warning != "" {
		a.showAcknowledgeModal = true
		a.acknowledgeModalTitle = "Keybindings"
		if !valid {
			a.acknowledgeModalTitle = "Invalid Keybindings"
		}
		a.acknowledgeModalMsg = warning
	}

	return a
}

// WithStartupWarning shows msg in an acknowledge modal before the chat view.
// It is appended when a warning is already pending.
func (a AppView) WithStartupWarning(title, msg string) AppView {
	if a.showAcknowledgeModal {
		a.acknowledgeModalMsg += "\n\n" + msg
		return a
	}
	a.showAcknowledgeModal = true
	a.acknowledgeModalTitle = title
	a.acknowledgeModalMsg = msg
	return a
}

// Shutdown releases the controller's timers
func (a AppView) Shutdown() {
	a.dataModel.Shutdown()
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.dataModel.LoadHistory(),
	)
}

// providerLabel names the backend for the title bar, e.g. "ollama · llama3.1"
func (a AppView) providerLabel() string {
	if holder, ok := a.backend.(providerHolder); ok {
		return fmt.Sprintf("%s · %s", a.cfg.ProviderType, holder.Provider().GetDisplayName())
	}
	if remote, ok := a.backend.(remoteEndpoint); ok {
		if u, err := url.Parse(remote.BaseURL()); err == nil && u.Host != "" {
			return "remote · " + u.Host
		}
		return "remote"
	}
	return a.cfg.ProviderType
}

func (a AppView) conversationName() string {
	if namer, ok := a.backend.(conversationNamer); ok {
		return namer.Conversation()
	}
	return ""
}

// layout sizes the viewport around the title, flash line, input and status bar
func (a *AppView) layout() {
	// title (1) + blank (1) + flash (1) + textarea (3) + status (1)
	viewportHeight := a.height - 7
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	a.viewport.Width = a.width
	a.viewport.Height = viewportHeight
	a.textarea.SetWidth(a.width)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading TreeChat..."
	}

	if a.showAcknowledgeModal {
		return RenderAcknowledgeModal(a.acknowledgeModalTitle, a.acknowledgeModalMsg, ModalTypeWarning, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showSaved {
		return a.renderSavedPanel(a.width, a.height)
	}

	// Title bar - "TreeChat - provider · model - conversation"
	title := AssistantStyle.Render("TreeChat") + TitleStyle.Render(" - "+a.providerLabel())
	if conversation := a.conversationName(); conversation != "" {
		title += UserStyle.Render(" - " + conversation)
	}

	var body string
	if a.dataModel.View() == appmodel.ViewLanding {
		body = renderLanding(a.keys, a.width, a.viewport.Height)
	} else {
		body = a.viewport.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		body,
		a.renderFlash(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderFlash() string {
	if a.flashText == "" {
		return ""
	}
	text := truncate(a.flashText, a.width)
	switch {
	case a.flashKind.IsError():
		return FlashErrorStyle.Render(text)
	case a.flashKind == appmodel.NotifyRateLimited:
		return RateLimitStyle.Render(text)
	default:
		return FlashStyle.Render(text)
	}
}

func (a AppView) renderStatusBar() string {
	var state string
	switch a.dataModel.State() {
	case appmodel.Sending:
		state = a.loadingSpinner.View() + " Sending…"
	case appmodel.RateLimited:
		state = RateLimitStyle.Render("Rate limited · " + a.dataModel.Countdown())
	}
	if usage := a.dataModel.Usage(); usage != nil && a.dataModel.State() != appmodel.RateLimited {
		left := DimStyle.Render(fmt.Sprintf("%d left", usage.Available()))
		if state == "" {
			state = left
		} else {
			state += "  " + left
		}
	}

	kb := a.keys
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	hints := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s  %s %s",
		kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
		kb.DisplayActionKey("send"), descStyle.Render("Send"),
		kb.DisplayActionKey("save_last_response"), descStyle.Render("Save"),
		kb.DisplayActionKey("saved_panel"), descStyle.Render("Saved"),
		kb.DisplayActionKey("new_conversation"), descStyle.Render("New"),
		kb.DisplayActionKey("help"), descStyle.Render("Help"),
	)

	if state == "" {
		return StatusStyle.Render(hints)
	}
	return StatusStyle.Render(state + "  |  " + hints)
}
