package model

import (
	"time"

	"golang.org/x/time/rate"
)

// UsageMeter counts dispatches against a per-window allowance and signals
// the rate-limit gate once the allowance is spent.
type UsageMeter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewUsageMeter allows limit dispatches per window, refilling evenly.
// Returns nil when limit is not positive (metering disabled).
func NewUsageMeter(limit int, window time.Duration, now func() time.Time) *UsageMeter {
	if limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultCooldownWindow
	}
	if now == nil {
		now = time.Now
	}
	every := window / time.Duration(limit)
	return &UsageMeter{
		limiter: rate.NewLimiter(rate.Every(every), limit),
		now:     now,
	}
}

// Record consumes one unit of allowance. Reports false if none was left.
func (u *UsageMeter) Record() bool {
	return u.limiter.AllowN(u.now(), 1)
}

// Exhausted reports whether the next dispatch would exceed the allowance
func (u *UsageMeter) Exhausted() bool {
	return u.limiter.TokensAt(u.now()) < 1
}

// Available returns the whole dispatches currently allowed
func (u *UsageMeter) Available() int {
	tokens := u.limiter.TokensAt(u.now())
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}
