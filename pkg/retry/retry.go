// Package retry runs an operation under an exponential backoff schedule.
// The kafka producer and the dictionary cache share it; each supplies its
// own Policy from config.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryableError marks an error worth another attempt. Unclassified errors
// are treated as retryable; only FatalError stops a run early.
type RetryableError interface {
	error
	IsRetryable() bool
}

// FatalError stops the run immediately, remaining attempts notwithstanding.
type FatalError interface {
	error
	IsFatal() bool
}

type retryableError struct{ err error }

func (e *retryableError) Error() string     { return e.err.Error() }
func (e *retryableError) IsRetryable() bool { return true }
func (e *retryableError) Unwrap() error     { return e.err }

type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) IsFatal() bool { return true }
func (e *fatalError) Unwrap() error { return e.err }

func NewRetryableError(err error) RetryableError {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func NewFatalError(err error) FatalError {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// Policy bounds one retry run. MaxElapsedTime of zero means only the
// attempt count limits the run.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

const defaultMaxAttempts = 3

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     defaultMaxAttempts,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  5 * time.Minute,
	}
}

// Retry runs fn until it succeeds, returns a FatalError, or the policy is
// exhausted. Context cancellation aborts between attempts.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	return RetryWithCallback(ctx, policy, fn, nil)
}

// RetryWithCallback is Retry with a hook invoked after each failed attempt
// that will be followed by another one. The delay handed to the hook is the
// nominal schedule value; the actual pause is jittered.
func RetryWithCallback(ctx context.Context, policy Policy, fn func() error, onRetry func(attempt int, err error, nextDelay time.Duration)) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaultMaxAttempts
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		var fatal FatalError
		if errors.As(err, &fatal) {
			return backoff.Permanent(err)
		}
		var retryable RetryableError
		if !errors.As(err, &retryable) {
			err = NewRetryableError(err)
		}

		if onRetry != nil && attempt < policy.MaxAttempts {
			onRetry(attempt, err, policy.delayAfter(attempt))
		}
		return err
	}

	return backoff.Retry(operation, policy.schedule(ctx))
}
