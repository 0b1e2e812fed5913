package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithBackoff executes the operation, retrying on failure up to
// MaxAttempts total attempts with the configured interval between them.
// With the default multiplier of 1.0 the interval is fixed, which matches
// provider propagation polling; a larger multiplier gives exponential
// backoff. Context cancellation is respected while sleeping.
//
// Errors wrapped with Fatal() are not retried.
func WithBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		MaxAttempts: 5,
		Interval:    1 * time.Second,
		MaxInterval: 5 * time.Minute,
		Multiplier:  1.0,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	interval := cfg.Interval
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if attempt < cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(interval):
				interval = time.Duration(float64(interval) * cfg.Multiplier)
				if interval > cfg.MaxInterval {
					interval = cfg.MaxInterval
				}
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxInterval sets the maximum delay between attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(c *Config) {
		c.MaxInterval = d
	}
}

// WithMultiplier sets the backoff multiplier applied after each attempt.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
// Operations that encounter fatal errors will not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
