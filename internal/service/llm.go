package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LLM defines the interface for language model interactions
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderError is a failed transport exchange with the model provider.
// Transient marks network-class failures that a bounded retry may recover;
// auth and malformed-request failures are not transient and surface
// immediately.
type ProviderError struct {
	Code      string
	Message   string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider error (%s): %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// RetryPolicy bounds model-call retries. Attempt n waits
// BaseDelay * 2^(n-1) before running; only transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy allows the initial attempt plus two retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// RetryingLLM wraps an LLM with a RetryPolicy. Caller cancellation always
// wins: a cancelled context aborts the attempt and suppresses further ones.
type RetryingLLM struct {
	inner  LLM
	policy RetryPolicy
}

// NewRetryingLLM wraps inner with policy. MaxAttempts below 1 is treated as 1.
func NewRetryingLLM(inner LLM, policy RetryPolicy) *RetryingLLM {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingLLM{inner: inner, policy: policy}
}

// Complete invokes the wrapped model, retrying transient failures with
// exponential backoff until the policy's attempt budget runs out.
func (r *RetryingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := r.policy.BaseDelay << (attempt - 2)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		out, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// The caller gave up; do not burn further attempts.
			return "", err
		}
		if !IsTransient(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("model call failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}
