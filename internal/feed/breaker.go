package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"candlerank/internal/errors"
)

// BreakerConfig controls when repeated provider failures suspend
// fetching and how long the suspension lasts.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that
	// opens the circuit.
	FailureThreshold int
	// ProbeSuccesses is the number of successful probes required to
	// close an open circuit again.
	ProbeSuccesses int
	// Cooldown is how long an open circuit rejects calls before the
	// next probe is allowed through.
	Cooldown time.Duration
	// Benign classifies errors that are authoritative answers rather
	// than provider trouble, such as lookups for unknown symbols.
	// Benign errors never count toward the failure threshold.
	Benign func(error) bool
}

// DefaultBreakerConfig returns thresholds suited to an interactive
// tool: trip after a short failure streak, probe again after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		ProbeSuccesses:   1,
		Cooldown:         time.Minute,
	}
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker guards provider calls. Consecutive failures open it; while
// open, calls fail immediately without touching the provider. Once the
// cooldown passes, a probe call is let through and its outcome decides
// whether the circuit closes. Watch mode keeps one breaker across
// cycles, so an unreachable backend stops being hammered on schedule.
type Breaker struct {
	cfg BreakerConfig

	mu        sync.Mutex
	state     breakerState
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	if cfg.ProbeSuccesses < 1 {
		cfg.ProbeSuccesses = 1
	}
	return &Breaker{cfg: cfg}
}

// State returns the current state name: closed, open, or half-open.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

// Do runs fn under the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// breakerDo runs fn under b, passing its result through.
func breakerDo[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	v, err := fn()
	b.record(err)
	return v, err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		wait := b.cfg.Cooldown - time.Since(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("provider suspended for %s after repeated failures: %w",
				wait.Round(time.Second), errors.ErrConnectionFailed)
		}
		b.state = breakerHalfOpen
		b.successes = 0
	}
	return nil
}

// record updates the circuit with a call outcome. A canceled context
// is the caller's doing and counts neither way.
func (b *Breaker) record(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil && b.cfg.Benign != nil && b.cfg.Benign(err) {
		err = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		if b.state == breakerHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.state = breakerOpen
			b.openedAt = time.Now()
			b.failures = 0
		}
		return
	}

	switch b.state {
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.ProbeSuccesses {
			b.state = breakerClosed
			b.failures = 0
		}
	default:
		b.failures = 0
	}
}
