package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy yields the pause before a retry attempt.
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay geometrically per attempt, adds
// random jitter so concurrent callers do not retry in lockstep, and caps
// the result at MaxDelay.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the delay, 0.0-1.0
}

// DefaultExponentialBackoff is tuned for gateway profile lookups: a short
// retry budget that stays well inside the external-call timeout. With the
// defaults the pauses run ~200ms, ~400ms, ~800ms (±20%).
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}

// NextDelay returns BaseDelay * Multiplier^attempt, capped at MaxDelay,
// with ±Jitter applied. Attempt numbers below zero fall back to BaseDelay.
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return eb.BaseDelay
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	delay = math.Min(delay, float64(eb.MaxDelay))

	spread := delay * eb.Jitter
	delay += (rand.Float64()*2 - 1) * spread

	if delay < 0 {
		return eb.BaseDelay
	}
	return time.Duration(delay)
}

// FixedBackoff pauses the same duration between every attempt.
type FixedBackoff struct {
	Delay time.Duration
}

func (fb *FixedBackoff) NextDelay(attempt int) time.Duration {
	return fb.Delay
}
