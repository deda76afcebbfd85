package model

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"treechat/config"
)

const (
	// DefaultCooldownWindow is how long the gate stays closed once tripped.
	DefaultCooldownWindow = time.Hour

	countdownInterval = time.Second
)

// CooldownWindow exists only while the gate is closed
type CooldownWindow struct {
	EndsAt time.Time
}

// RateLimitGate is the Open/Closed cooldown state machine layered on dispatch.
//
// The gate is Open exactly when no CooldownWindow exists. The countdown timer
// is a scoped resource: each Close starts a new generation, and any tick that
// carries an older generation is dropped, so reopening or releasing the gate
// cancels the outstanding timer.
type RateLimitGate struct {
	window     *CooldownWindow
	duration   time.Duration
	now        func() time.Time
	generation int
}

// NewRateLimitGate creates an open gate. A fresh gate is always Open: cooldowns
// are held in memory only and do not survive a restart.
func NewRateLimitGate(duration time.Duration, now func() time.Time) *RateLimitGate {
	if duration <= 0 {
		duration = DefaultCooldownWindow
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimitGate{duration: duration, now: now}
}

// IsOpen reports whether dispatch is permitted
func (g *RateLimitGate) IsOpen() bool {
	return g.window == nil
}

// Window returns the active cooldown window, if any
func (g *RateLimitGate) Window() (CooldownWindow, bool) {
	if g.window == nil {
		return CooldownWindow{}, false
	}
	return *g.window, true
}

// Close trips the gate with endsAt = now + duration. Closing an already
// closed gate keeps the existing window and reports false.
func (g *RateLimitGate) Close() (int, bool) {
	if g.window != nil {
		return g.generation, false
	}
	g.generation++
	g.window = &CooldownWindow{EndsAt: g.now().Add(g.duration)}
	return g.generation, true
}

// Tick recomputes the countdown for the given generation. reopened is true
// exactly once per window, on the first tick at or after EndsAt; live is true
// when another tick should be scheduled.
func (g *RateLimitGate) Tick(generation int) (reopened, live bool) {
	if g.window == nil || generation != g.generation {
		return false, false
	}
	if !g.now().Before(g.window.EndsAt) {
		g.window = nil
		g.generation++
		return true, false
	}
	return false, true
}

// Release cancels the countdown timer without reopening the gate
func (g *RateLimitGate) Release() {
	g.generation++
}

// Remaining returns endsAt - now, clamped at zero
func (g *RateLimitGate) Remaining() time.Duration {
	if g.window == nil {
		return 0
	}
	remaining := g.window.EndsAt.Sub(g.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Countdown returns the remaining cooldown as M:SS
func (g *RateLimitGate) Countdown() string {
	return FormatCountdown(g.Remaining())
}

// FormatCountdown formats d as M:SS, rounding partial seconds up so the
// display only reads 0:00 once the window has elapsed.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// TriggerRateLimit manually closes the gate and starts the countdown.
// Returns nil if the gate was already closed.
func (m *Model) TriggerRateLimit() tea.Cmd {
	return m.closeGate("manual")
}

// Countdown returns the remaining cooldown as M:SS ("0:00" when open)
func (m *Model) Countdown() string {
	return m.gate.Countdown()
}

// IsRateLimited reports whether the gate is closed
func (m *Model) IsRateLimited() bool {
	return !m.gate.IsOpen()
}

func (m *Model) closeGate(reason string) tea.Cmd {
	generation, closed := m.gate.Close()
	if !closed {
		return nil
	}
	if config.DebugLog != nil {
		window, _ := m.gate.Window()
		config.DebugLog.Printf("[Gate] Closed (%s) until %s", reason, window.EndsAt.Format(time.RFC3339))
	}
	m.notify(NotifyRateLimited, fmt.Sprintf("Usage limit reached. Try again in %s.", m.gate.Countdown()))
	return scheduleCooldownTick(generation)
}

func (m *Model) handleCooldownTick(msg CooldownTickMsg) tea.Cmd {
	reopened, live := m.gate.Tick(msg.Generation)
	if reopened {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Gate] Cooldown elapsed, gate open")
		}
		m.notify(NotifyWelcomeBack, "Welcome back! You can send messages again.")
		return nil
	}
	if !live {
		return nil
	}
	return scheduleCooldownTick(msg.Generation)
}

func scheduleCooldownTick(generation int) tea.Cmd {
	return tea.Tick(countdownInterval, func(t time.Time) tea.Msg {
		return CooldownTickMsg{Generation: generation, At: t}
	})
}
