package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"misetui/internal/logging"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("mise is unavailable, retrying shortly")

// BreakerState is the state of a BreakerRunner.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// BreakerRunner stops spawning the binary after repeated launch failures
// (typically a missing binary). Non-zero exits are results, not failures,
// and never trip it. After resetTimeout one probe is let through.
type BreakerRunner struct {
	inner        Runner
	threshold    int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
}

// NewBreakerRunner wraps inner.
func NewBreakerRunner(inner Runner, threshold int, resetTimeout time.Duration) *BreakerRunner {
	if threshold < 1 {
		threshold = 1
	}
	return &BreakerRunner{
		inner:        inner,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

func (b *BreakerRunner) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	if !b.allow() {
		return Result{}, ErrUnavailable
	}
	res, err := b.inner.Run(ctx, dir, args...)
	switch {
	case err == nil:
		b.recordSuccess()
	case ctx.Err() != nil:
		b.abort()
	default:
		b.recordFailure(err)
	}
	return res, err
}

func (b *BreakerRunner) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) < b.resetTimeout {
			return false
		}
		b.state = BreakerHalfOpen
		return true
	case BreakerHalfOpen:
		// One probe at a time.
		return false
	default:
		return true
	}
}

func (b *BreakerRunner) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		if b.state != BreakerOpen {
			logging.Warn("mise launches failing, pausing", "failures", b.failures, "error", err)
		}
		b.state = BreakerOpen
	}
}

// abort releases a probe that was cancelled before it could tell anything.
func (b *BreakerRunner) abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
	}
}

func (b *BreakerRunner) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
}
