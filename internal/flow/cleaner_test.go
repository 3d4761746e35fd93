package flow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCleaner_ReclaimsIdleSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	idle := NewSession(1)
	if err := store.Set(ctx, 1, idle); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	// Backdate the stored copy past the TTL.
	store.mu.Lock()
	store.sessions[1].UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	store.mu.Unlock()

	fresh := NewSession(2)
	if err := store.Set(ctx, 2, fresh); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	cleaner := NewCleaner(store, testLogger(), time.Hour, time.Minute)
	cleaner.cleanup(ctx)

	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session reclaimed, got %v", err)
	}
	if _, err := store.Get(ctx, 2); err != nil {
		t.Fatalf("fresh session must survive, got %v", err)
	}
}
