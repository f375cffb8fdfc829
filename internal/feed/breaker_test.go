package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candlerank/internal/errors"
	"candlerank/pkg/utils"
)

var errBackendDown = fmt.Errorf("backend down")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, ProbeSuccesses: 1, Cooldown: time.Hour})

	for i := 0; i < 3; i++ {
		if err := b.Do(func() error { return errBackendDown }); err != errBackendDown {
			t.Fatalf("Call %d: expected backend error, got %v", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("Expected open after 3 failures, got %s", b.State())
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	if called {
		t.Error("Open circuit should not invoke the call")
	}
	if !errors.Is(err, errors.ErrConnectionFailed) {
		t.Errorf("Expected connection failed sentinel, got %v", err)
	}
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, ProbeSuccesses: 1, Cooldown: time.Hour})

	b.Do(func() error { return errBackendDown })
	b.Do(func() error { return errBackendDown })
	b.Do(func() error { return nil })
	b.Do(func() error { return errBackendDown })
	b.Do(func() error { return errBackendDown })

	if b.State() != "closed" {
		t.Errorf("Streak was broken by a success, expected closed, got %s", b.State())
	}
}

func TestBreakerBenignErrorsDoNotTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 2,
		ProbeSuccesses:   1,
		Cooldown:         time.Hour,
		Benign: func(err error) bool {
			return errors.Is(err, errors.ErrSymbolNotFound)
		},
	})

	for i := 0; i < 5; i++ {
		b.Do(func() error {
			return fmt.Errorf("lookup: %w", errors.ErrSymbolNotFound)
		})
	}
	if b.State() != "closed" {
		t.Errorf("Authoritative answers should not trip the breaker, got %s", b.State())
	}
}

func TestBreakerCanceledContextIsNeutral(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, ProbeSuccesses: 1, Cooldown: time.Hour})

	for i := 0; i < 5; i++ {
		b.Do(func() error { return context.Canceled })
	}
	if b.State() != "closed" {
		t.Errorf("Caller cancellation should not count, got %s", b.State())
	}
}

func TestBreakerProbeClosesCircuit(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, ProbeSuccesses: 1, Cooldown: 0})

	b.Do(func() error { return errBackendDown })
	if b.State() != "open" {
		t.Fatalf("Expected open, got %s", b.State())
	}

	// Zero cooldown lets the probe through immediately.
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("Probe should run and succeed: %v", err)
	}
	if b.State() != "closed" {
		t.Errorf("Successful probe should close the circuit, got %s", b.State())
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, ProbeSuccesses: 1, Cooldown: 0})

	b.Do(func() error { return errBackendDown })
	if err := b.Do(func() error { return errBackendDown }); err != errBackendDown {
		t.Fatalf("Probe should run: %v", err)
	}
	if b.State() != "open" {
		t.Errorf("Failed probe should reopen the circuit, got %s", b.State())
	}
}

func TestYahooFetchFailsFastWhenCircuitOpen(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewYahooProvider()
	p.BaseURL = server.URL
	p.Retry = utils.RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1.0}
	p.Breaker = NewBreaker(BreakerConfig{FailureThreshold: 2, ProbeSuccesses: 1, Cooldown: time.Hour})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := p.Fetch(ctx, "EURUSD=X", "1d", "5d"); err == nil {
			t.Fatalf("Fetch %d should fail", i)
		}
	}
	if hits != 2 {
		t.Fatalf("Expected 2 upstream hits before tripping, got %d", hits)
	}

	_, err := p.Fetch(ctx, "EURUSD=X", "1d", "5d")
	if !errors.Is(err, errors.ErrConnectionFailed) {
		t.Errorf("Expected circuit rejection, got %v", err)
	}
	if hits != 2 {
		t.Errorf("Open circuit should not reach upstream, got %d hits", hits)
	}
}
