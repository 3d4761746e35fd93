package apperr

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetry_SucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewDelivery("", errors.New("smtp timeout"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	rejection := NewInvalidInput("bad input")

	err := WithRetry(context.Background(), func() error {
		calls++
		return rejection
	})

	if !errors.Is(err, rejection) {
		t.Fatalf("expected the rejection back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-retryable errors must not be retried, got %d attempts", calls)
	}
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewPersistence("", errors.New("db down"))
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != MaxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", MaxRetries+1, calls)
	}
}

func TestWithRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return NewDelivery("", errors.New("smtp timeout"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"invalid input", NewInvalidInput("x"), false},
		{"persistence", NewPersistence("x", errors.New("db")), true},
		{"delivery", NewDelivery("x", errors.New("smtp")), true},
		{"locked", NewLocked("x"), true},
		{"rendering", NewRendering("x", errors.New("font")), false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
