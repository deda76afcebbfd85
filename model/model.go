package model

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRequestTimeout bounds a completion or history call
const DefaultRequestTimeout = 120 * time.Second

// DispatchState is the dispatch pipeline's state for one conversation view
type DispatchState int

const (
	Idle DispatchState = iota
	Sending
	RateLimited
)

func (s DispatchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case RateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// View selects between the welcome landing view and the transcript
type View int

const (
	ViewLanding View = iota
	ViewTranscript
)

// Options configures a Model. Zero values select defaults.
type Options struct {
	CooldownWindow time.Duration
	RequestTimeout time.Duration
	UsageLimit     int // Dispatches per CooldownWindow, 0 disables metering
	DefaultTopic   string
	Now            func() time.Time
}

// Model is the chat session controller. It owns the transcript, the single
// in-flight dispatch slot, the rate-limit gate and the bookmark index for one
// conversation view.
//
// Model is not safe for concurrent use. All methods are meant to be called
// from the Bubble Tea update loop; remote calls run inside the returned
// tea.Cmd and report back through Update.
type Model struct {
	completer Completer
	history   HistorySource

	transcript *Transcript
	bookmarks  *BookmarkIndex
	gate       *RateLimitGate
	usage      *UsageMeter

	inFlight      *dispatch
	draft         string
	view          View
	historyLoaded bool
	historyState  historyLoad
	lastErr       error
	pending       []Notification

	requestTimeout time.Duration
	now            func() time.Time
}

// NewModel creates a controller. history may be nil when the host has no
// conversation history endpoint.
func NewModel(completer Completer, history HistorySource, opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cooldown := opts.CooldownWindow
	if cooldown <= 0 {
		cooldown = DefaultCooldownWindow
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Model{
		completer:      completer,
		history:        history,
		transcript:     NewTranscript(),
		bookmarks:      NewBookmarkIndex(opts.DefaultTopic, now),
		gate:           NewRateLimitGate(cooldown, now),
		usage:          NewUsageMeter(opts.UsageLimit, cooldown, now),
		view:           ViewLanding,
		requestTimeout: timeout,
		now:            now,
	}
}

// State derives the dispatch state: an outstanding request wins, then the
// presence of a cooldown window.
func (m *Model) State() DispatchState {
	if m.inFlight != nil {
		return Sending
	}
	if !m.gate.IsOpen() {
		return RateLimited
	}
	return Idle
}

// Messages returns the transcript in conversation order
func (m *Model) Messages() []Message {
	return m.transcript.Messages()
}

// Transcript exposes the transcript store
func (m *Model) Transcript() *Transcript {
	return m.transcript
}

// Bookmarks exposes the bookmark index
func (m *Model) Bookmarks() *BookmarkIndex {
	return m.bookmarks
}

// Usage returns the usage meter, nil when metering is disabled
func (m *Model) Usage() *UsageMeter {
	return m.usage
}

// View returns which view the host should show
func (m *Model) View() View {
	return m.view
}

// Draft returns the current input field contents
func (m *Model) Draft() string {
	return m.draft
}

// SetDraft updates the input field contents
func (m *Model) SetDraft(text string) {
	m.draft = text
}

// LastError returns the most recent dispatch or history failure
func (m *Model) LastError() error {
	return m.lastErr
}

// ToggleSaved toggles a bookmark on msg and queues a notice
func (m *Model) ToggleSaved(msg Message, topic string) bool {
	saved := m.bookmarks.ToggleMessage(msg, topic)
	if saved {
		m.notify(NotifySaved, "Message saved")
	} else {
		m.notify(NotifyUnsaved, "Message removed from saved")
	}
	return saved
}

// Clear resets to an empty "new conversation" landing state. An outstanding
// request keeps the single-flight slot, but its response is discarded.
func (m *Model) Clear() {
	m.transcript.Clear()
	m.view = ViewLanding
	m.draft = ""
	if m.inFlight != nil {
		m.inFlight.abandoned = true
	}
	if m.historyState == historyPending {
		m.historyState = historyAbandoned
	}
}

// Shutdown releases the countdown timer for session teardown
func (m *Model) Shutdown() {
	m.gate.Release()
}

// Update reconciles asynchronous results. Messages it does not own are
// ignored and nil is returned.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CompletionDoneMsg:
		return m.handleCompletionDone(msg)
	case CompletionErrorMsg:
		return m.handleCompletionError(msg)
	case HistoryLoadedMsg:
		m.handleHistoryLoaded(msg)
		return nil
	case CooldownTickMsg:
		return m.handleCooldownTick(msg)
	}
	return nil
}
