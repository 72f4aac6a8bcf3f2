// Package waiter blocks until a polled resource status converges.
//
// Cloud create/modify/delete calls return before the resource is usable;
// [Wait] re-queries the resource on a fixed interval until a target
// condition holds, a terminal failure status is observed, or the timeout
// elapses. It is used uniformly for cluster-available, instance-available,
// domain-active, and resource-deleted convergence.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Query polls a resource once. It returns the observed status, whether the
// target condition holds, and any error. Errors abort the wait immediately.
type Query func(ctx context.Context) (status string, done bool, err error)

// Config controls a single wait loop.
type Config struct {
	// Resource names the awaited resource for error messages.
	Resource string

	Interval time.Duration
	Timeout  time.Duration

	// Fatal lists statuses that terminate the wait as a failure
	// (e.g. "failed", or "deleting" when availability was expected).
	Fatal []string

	// Now and Sleep are injectable for tests; nil means wall clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Wait polls query every Interval until it reports done, a fatal status is
// observed, or Timeout elapses. It returns the last observed status.
func Wait(ctx context.Context, cfg Config, query Query) (string, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	start := now()
	var status string
	for {
		var done bool
		var err error
		status, done, err = query(ctx)
		if err != nil {
			return status, fmt.Errorf("waiting for %s: %w", cfg.Resource, err)
		}
		if done {
			return status, nil
		}
		if slices.Contains(cfg.Fatal, status) {
			return status, &FailedError{Resource: cfg.Resource, Status: status}
		}
		if now().Sub(start) > cfg.Timeout {
			return status, &TimeoutError{Resource: cfg.Resource, LastStatus: status, Timeout: cfg.Timeout}
		}
		if err := sleep(ctx, cfg.Interval); err != nil {
			return status, fmt.Errorf("waiting for %s: %w", cfg.Resource, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// TimeoutError reports that a resource did not converge within the bound.
// The last observed status is preserved for diagnosis.
type TimeoutError struct {
	Resource   string
	LastStatus string
	Timeout    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s (last status %q)", e.Timeout, e.Resource, e.LastStatus)
}

// FailedError reports that a resource reached a terminal failure status.
type FailedError struct {
	Resource string
	Status   string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s reached terminal status %q", e.Resource, e.Status)
}

// IsTimeout checks if an error is a convergence timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
