package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM fails a fixed number of times before succeeding.
type scriptedLLM struct {
	failures int
	err      error
	calls    atomic.Int64
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	n := s.calls.Add(1)
	if int(n) <= s.failures {
		return "", s.err
	}
	return "ok", nil
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	inner := &scriptedLLM{
		failures: 2,
		err:      &ProviderError{Code: "UNAVAILABLE", Message: "upstream flap", Transient: true},
	}
	llm := NewRetryingLLM(inner, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	out, err := llm.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	inner := &scriptedLLM{
		failures: 10,
		err:      &ProviderError{Code: "UNAVAILABLE", Message: "down", Transient: true},
	}
	llm := NewRetryingLLM(inner, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	_, err := llm.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int64(3), inner.calls.Load())

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe), "final error keeps the provider error in its chain")
}

func TestRetrySkipsPermanentFailures(t *testing.T) {
	inner := &scriptedLLM{
		failures: 10,
		err:      &ProviderError{Code: "UNAUTHENTICATED", Message: "bad credentials"},
	}
	llm := NewRetryingLLM(inner, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	_, err := llm.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int64(1), inner.calls.Load(), "permanent failures must not be retried")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	inner := &scriptedLLM{
		failures: 10,
		err:      &ProviderError{Code: "UNAVAILABLE", Message: "down", Transient: true},
	}
	llm := NewRetryingLLM(inner, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := llm.Complete(ctx, "p")
	require.Error(t, err)
	assert.LessOrEqual(t, inner.calls.Load(), int64(1), "no retries after cancellation")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&ProviderError{Transient: true}))
	assert.False(t, IsTransient(&ProviderError{}))
	assert.False(t, IsTransient(errors.New("plain")))
}
