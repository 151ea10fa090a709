package client

import "time"

// Backoff computes bounded exponential reconnection delays. The original
// deployment carried two competing retry policies (a coarse fixed-interval
// loop and the transport's own exponential schedule); this is the single
// unified policy, with every knob configurable.
type Backoff struct {
	Base        time.Duration // delay before the first retry
	Cap         time.Duration // upper bound on any single delay
	MaxAttempts int           // automatic retries before giving up
}

// DefaultBackoff matches the observed production settings.
var DefaultBackoff = Backoff{
	Base:        time.Second,
	Cap:         30 * time.Second,
	MaxAttempts: 5,
}

// Delay returns the wait before attempt n (0-based): min(Base*2^n, Cap).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base << uint(attempt)
	if d <= 0 || d > b.Cap {
		return b.Cap
	}
	return d
}

// Exhausted reports whether attempt n exceeds the retry budget.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxAttempts
}
