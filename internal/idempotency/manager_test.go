package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupManager(t *testing.T) Manager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewManager(NewRedisStore(client, testLogger()), testLogger())
}

func TestManager_ExecutesOnce(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"orders": 2}, nil
	}

	first, err := m.Execute(ctx, "key-1", time.Hour, fn)
	if err != nil {
		t.Fatalf("first execution failed: %v", err)
	}
	if first.FromCache {
		t.Fatal("first execution must not come from cache")
	}

	second, err := m.Execute(ctx, "key-1", time.Hour, fn)
	if err != nil {
		t.Fatalf("second execution failed: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second execution must replay the cached response")
	}

	if calls != 1 {
		t.Fatalf("operation must run exactly once, ran %d times", calls)
	}

	var decoded map[string]int
	if err := json.Unmarshal(second.Response, &decoded); err != nil {
		t.Fatalf("failed to decode cached response: %v", err)
	}
	if decoded["orders"] != 2 {
		t.Fatalf("unexpected cached response: %v", decoded)
	}
}

func TestManager_DistinctKeysRunIndependently(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	if _, err := m.Execute(ctx, "key-a", time.Hour, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Execute(ctx, "key-b", time.Hour, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Fatalf("distinct keys must each execute, ran %d times", calls)
	}
}

func TestManager_OperationErrorNotCached(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	opErr := errors.New("db down")
	calls := 0
	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, opErr
		}
		return "ok", nil
	}

	if _, err := m.Execute(ctx, "key-retry", time.Hour, fn); !errors.Is(err, opErr) {
		t.Fatalf("expected operation error, got %v", err)
	}

	// A failed operation leaves no record, so a retry runs it again.
	result, err := m.Execute(ctx, "key-retry", time.Hour, fn)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.FromCache {
		t.Fatal("retry after failure must execute, not replay")
	}
	if calls != 2 {
		t.Fatalf("expected 2 executions, got %d", calls)
	}
}

func TestManager_ProcessingRejectsConcurrent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, testLogger())
	m := NewManager(store, testLogger())
	ctx := context.Background()

	// Another execution holds the lock and has marked the key as processing.
	locked, err := store.Lock(ctx, "key-busy", time.Minute)
	if err != nil || !locked {
		t.Fatalf("failed to pre-acquire lock: locked=%v err=%v", locked, err)
	}
	if err := store.Set(ctx, "key-busy", &Record{Status: StatusProcessing}, time.Minute); err != nil {
		t.Fatalf("failed to store processing record: %v", err)
	}

	_, err = m.Execute(ctx, "key-busy", time.Hour, func(ctx context.Context) (interface{}, error) {
		t.Fatal("operation must not run while the key is processing")
		return nil, nil
	})
	if !errors.Is(err, ErrRequestInProgress) {
		t.Fatalf("expected ErrRequestInProgress, got %v", err)
	}
}

func TestManager_WritesProcessingRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, testLogger())
	m := NewManager(store, testLogger())
	ctx := context.Background()

	var during *Record
	_, err := m.Execute(ctx, "key-mark", time.Hour, func(ctx context.Context) (interface{}, error) {
		during, _ = store.Get(ctx, "key-mark")
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if during == nil || during.Status != StatusProcessing {
		t.Fatalf("expected a processing record during execution, got %+v", during)
	}

	after, err := store.Get(ctx, "key-mark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after == nil || after.Status != StatusCompleted {
		t.Fatalf("expected a completed record after execution, got %+v", after)
	}
}

func TestCompletionKey(t *testing.T) {
	base := CompletionKey(42, "user@example.com", 100, []string{"16.03.2025", "17.03.2025"})

	if base != CompletionKey(42, "user@example.com", 100, []string{"16.03.2025", "17.03.2025"}) {
		t.Fatal("identical submissions must map to the same key")
	}

	variants := []string{
		CompletionKey(43, "user@example.com", 100, []string{"16.03.2025", "17.03.2025"}),
		CompletionKey(42, "other@example.com", 100, []string{"16.03.2025", "17.03.2025"}),
		CompletionKey(42, "user@example.com", 150, []string{"16.03.2025", "17.03.2025"}),
		CompletionKey(42, "user@example.com", 100, []string{"16.03.2025"}),
	}
	for i, variant := range variants {
		if variant == base {
			t.Fatalf("variant %d must produce a different key", i)
		}
	}
}
