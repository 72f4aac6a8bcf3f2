// Package retry provides utilities for retrying operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries int
	MinDelay   time.Duration
	MaxDelay   time.Duration

	// Transient reports whether an error is worth retrying. The default
	// retries everything that is not wrapped with Fatal().
	Transient func(error) bool

	// Jitter returns the random component added to each delay.
	Jitter func() time.Duration

	// Sleep waits for the given duration or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Do executes the operation with exponential backoff retry. The operation is
// attempted up to MaxRetries+1 times; the delay before retry n is
// min(MaxDelay, MinDelay*2^n + jitter). Context cancellation is respected
// throughout.
//
// Errors wrapped with Fatal(), or rejected by the Transient classifier,
// are not retried. Exhausting all retries returns an *ExhaustedError
// wrapping the last transient error.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		MaxRetries: 5,
		MinDelay:   1 * time.Second,
		MaxDelay:   30 * time.Second,
		Jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
		Sleep: sleepContext,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if cfg.Transient != nil && !cfg.Transient(err) {
			return err
		}

		lastErr = err

		if attempt < cfg.MaxRetries {
			delay := backoff(cfg, attempt)
			if err := cfg.Sleep(ctx, delay); err != nil {
				return fmt.Errorf("cancelled after %d attempts: %w", attempt+1, err)
			}
		}
	}

	return &ExhaustedError{Attempts: cfg.MaxRetries + 1, Err: lastErr}
}

// backoff computes the delay before retrying after the given attempt.
// MaxDelay caps the jittered total, so the delay never exceeds it.
func backoff(cfg *Config, attempt int) time.Duration {
	delay := cfg.MinDelay << uint(attempt)
	if cfg.Jitter != nil {
		delay += cfg.Jitter()
	}
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// WithMaxRetries sets the maximum number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithMinDelay sets the initial delay between retries.
func WithMinDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MinDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithTransient sets the classifier deciding which errors are retried.
func WithTransient(fn func(error) bool) Option {
	return func(c *Config) {
		c.Transient = fn
	}
}

// WithJitter sets the jitter source.
func WithJitter(fn func() time.Duration) Option {
	return func(c *Config) {
		c.Jitter = fn
	}
}

// WithSleep sets the sleep function. Used by tests to observe delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Config) {
		c.Sleep = fn
	}
}

// ExhaustedError reports that an operation kept failing transiently until
// the retry budget ran out.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsExhausted checks if an error carries an exhausted retry budget.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
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
