package agent

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrRateLimited marks calls rejected by the fixed-window rate limiter.
// Callers treat it like any other stage failure and fall through.
var ErrRateLimited = errors.New("rate limit exceeded")

// rateLimiter is a fixed-window counter: at most maxCalls calls per window,
// counter reset when the window rolls over. It is shared process-wide across
// pipeline invocations; it guards an external API quota, not correctness.
type rateLimiter struct {
	mu        sync.Mutex
	maxCalls  int
	window    time.Duration
	calls     int
	resetTime time.Time
	now       func() time.Time // injected for tests
}

func newRateLimiter(maxCalls int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

// allow consumes one slot in the current window, or returns ErrRateLimited
// (wrapped with the seconds remaining) without consuming anything.
func (rl *rateLimiter) allow() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if !now.Before(rl.resetTime) {
		rl.calls = 0
		rl.resetTime = now.Add(rl.window)
	}

	if rl.calls >= rl.maxCalls {
		wait := int(math.Ceil(rl.resetTime.Sub(now).Seconds()))
		return fmt.Errorf("%w, retry after %d seconds", ErrRateLimited, wait)
	}

	rl.calls++
	return nil
}
