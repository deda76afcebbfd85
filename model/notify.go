package model

import "time"

// NotificationKind classifies a user-facing notice
type NotificationKind int

const (
	NotifyDispatchError NotificationKind = iota
	NotifyHistoryError
	NotifyRateLimited
	NotifyWelcomeBack
	NotifySaved
	NotifyUnsaved
	NotifyInfo
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyDispatchError:
		return "dispatch_error"
	case NotifyHistoryError:
		return "history_error"
	case NotifyRateLimited:
		return "rate_limited"
	case NotifyWelcomeBack:
		return "welcome_back"
	case NotifySaved:
		return "saved"
	case NotifyUnsaved:
		return "unsaved"
	case NotifyInfo:
		return "info"
	default:
		return "unknown"
	}
}

// IsError reports whether the notice describes a failure
func (k NotificationKind) IsError() bool {
	return k == NotifyDispatchError || k == NotifyHistoryError
}

// Notification is a transient notice for the UI. The controller only queues
// them; delivery is the host's concern.
type Notification struct {
	Kind NotificationKind
	Text string
	At   time.Time
}

func (m *Model) notify(kind NotificationKind, text string) {
	m.pending = append(m.pending, Notification{Kind: kind, Text: text, At: m.now()})
}

// Notifications drains the pending notification queue
func (m *Model) Notifications() []Notification {
	out := m.pending
	m.pending = nil
	return out
}
