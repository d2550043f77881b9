package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryOnlyConfig(maxAttempts int) Config {
	return Config{
		RetryMaxAttempts:    maxAttempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func retryable(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(retryOnlyConfig(3))

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryable)

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteFailsFastOnNonRetryableError(t *testing.T) {
	executor := NewExecutor(retryOnlyConfig(3))
	permanent := errors.New("bad request")

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return permanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("Execute() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	executor := NewExecutor(retryOnlyConfig(3))
	transient := errors.New("still down")

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return transient
	}, retryable)

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() error = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteStopsWhenContextCanceled(t *testing.T) {
	executor := NewExecutor(retryOnlyConfig(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := executor.Execute(ctx, "op", func(context.Context) error {
		calls++
		return errors.New("transient")
	}, retryable)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestSyncConfigKeepsRequestPathFast(t *testing.T) {
	executor := NewExecutor(SyncConfig())
	transient := errors.New("broker down")

	calls := 0
	start := time.Now()
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return transient
	}, retryable)
	elapsed := time.Since(start)

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() error = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("request-path retries took %v, must stay in the millisecond range", elapsed)
	}
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	executor := NewExecutor(Config{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	failing := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 2; i++ {
		if err := executor.Execute(context.Background(), "op", failing, retryable); err == nil {
			t.Fatalf("attempt %d expected error", i+1)
		}
	}

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	}, retryable)

	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("operation ran despite open circuit")
	}
}

func TestBreakerIgnoresErrorsNotRecordedAsFailures(t *testing.T) {
	executor := NewExecutor(Config{
		RetryMaxAttempts: 1,

		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	notRecorded := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}

	failing := func(context.Context) error { return errors.New("rejected input") }
	for i := 0; i < 5; i++ {
		if err := executor.Execute(context.Background(), "op", failing, notRecorded); IsCircuitOpen(err) {
			t.Fatalf("circuit opened on non-failure errors at attempt %d", i+1)
		}
	}
}
