package model

import "time"

// CompletionDoneMsg carries a successful completion for the in-flight slot
type CompletionDoneMsg struct {
	RequestID string
	Reply     Message
	Elapsed   time.Duration
}

// CompletionErrorMsg carries a failed completion for the in-flight slot
type CompletionErrorMsg struct {
	RequestID string
	Err       error
}

// HistoryLoadedMsg carries the result of the one-shot history call
type HistoryLoadedMsg struct {
	Messages []Message
	Err      error
}

// CooldownTickMsg fires once per second while the rate-limit gate is closed.
// Generation identifies the countdown that scheduled it; ticks from a released
// countdown are ignored.
type CooldownTickMsg struct {
	Generation int
	At         time.Time
}
