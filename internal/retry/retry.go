// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Strategy selects how the delay grows between attempts.
type Strategy int

const (
	// Linear waits BaseDelay*(n+1) after the n-th failed attempt.
	Linear Strategy = iota
	// Exponential waits BaseDelay*2^n, capped at MaxDelay.
	Exponential
)

// Config defines retry behavior.
type Config struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay unit
	MaxDelay   time.Duration // Upper bound on a single wait (0 = unbounded)
	Strategy   Strategy
}

// DefaultConfig returns three linear retries starting at one second.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		Strategy:   Linear,
	}
}

// Attempts is the total number of calls WithRetry makes at most.
func (c Config) Attempts() int {
	if c.MaxRetries < 0 {
		return 1
	}
	return c.MaxRetries + 1
}

// Permanent wraps an error that must not be retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Do calls fn until it succeeds, returns a permanent error, the attempts run
// out or ctx is done.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	attempts := cfg.Attempts()
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Retry succeeded")
			}
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if attempt == attempts-1 {
			break
		}

		delay := Delay(cfg, attempt)
		log.Debug().
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying after delay")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// Delay returns the wait after the given zero-based failed attempt.
func Delay(cfg Config, attempt int) time.Duration {
	var d float64
	switch cfg.Strategy {
	case Exponential:
		d = float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	default:
		d = float64(cfg.BaseDelay) * float64(attempt+1)
	}
	if cfg.MaxDelay > 0 && d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	return time.Duration(d)
}

// StatusError reports a response whose status is not 2xx.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// GetStatusCode returns the HTTP status code.
func (e *StatusError) GetStatusCode() int {
	return e.StatusCode
}
