package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(client, testLogger(), time.Hour), mr
}

func TestRedisStorage_SetGet(t *testing.T) {
	storage, _ := setupRedisStorage(t)
	ctx := context.Background()

	session := NewSession(42)
	session.Step = StepSelectingItems
	session.Category = "Напитки"
	session.AddItem("Чай", 50)

	if err := storage.Set(ctx, 42, session); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := storage.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got.Step != StepSelectingItems || got.Category != "Напитки" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Чай" || got.Items[0].Price != 50 {
		t.Fatalf("items did not survive the round trip: %+v", got.Items)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("set must stamp UpdatedAt")
	}
}

func TestRedisStorage_GetMissing(t *testing.T) {
	storage, _ := setupRedisStorage(t)

	if _, err := storage.Get(context.Background(), 1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStorage_Clear(t *testing.T) {
	storage, _ := setupRedisStorage(t)
	ctx := context.Background()

	if err := storage.Set(ctx, 5, NewSession(5)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := storage.Clear(ctx, 5); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if _, err := storage.Get(ctx, 5); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after clear, got %v", err)
	}
}

func TestRedisStorage_GetAll(t *testing.T) {
	storage, _ := setupRedisStorage(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if err := storage.Set(ctx, id, NewSession(id)); err != nil {
			t.Fatalf("set failed for %d: %v", id, err)
		}
	}

	sessions, err := storage.GetAll(ctx)
	if err != nil {
		t.Fatalf("getall failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
}

func TestRedisStorage_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := NewRedisStorage(client, testLogger(), time.Minute)
	ctx := context.Background()

	if err := storage.Set(ctx, 9, NewSession(9)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := storage.Get(ctx, 9); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
