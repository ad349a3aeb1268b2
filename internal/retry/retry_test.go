package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDelayLinear(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, Strategy: Linear}

	for attempt, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		if got := Delay(cfg, attempt); got != want {
			t.Errorf("attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}

func TestDelayExponentialCapped(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Strategy: Exponential}

	if got := Delay(cfg, 1); got != 2*time.Second {
		t.Errorf("Expected 2s, got %v", got)
	}
	if got := Delay(cfg, 4); got != 3*time.Second {
		t.Errorf("Expected cap of 3s, got %v", got)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	cfg := Config{MaxRetries: 3, BaseDelay: time.Millisecond}
	calls := 0

	err := Do(context.Background(), cfg, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	cfg := Config{MaxRetries: 3, BaseDelay: time.Millisecond}
	calls := 0
	sentinel := &StatusError{StatusCode: 503, URL: "https://shop.test"}

	err := Do(context.Background(), cfg, func(int) error {
		calls++
		return sentinel
	})

	if calls != 4 {
		t.Errorf("Expected 4 calls (1 + 3 retries), got %d", calls)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.GetStatusCode() != 503 {
		t.Errorf("Expected wrapped StatusError, got %v", err)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	base := errors.New("bad request")

	err := Do(context.Background(), DefaultConfig(), func(int) error {
		calls++
		return Permanent(base)
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if !errors.Is(err, base) {
		t.Errorf("Expected base error, got %v", err)
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Config{MaxRetries: 2, BaseDelay: time.Hour}, func(int) error {
		return errors.New("down")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
