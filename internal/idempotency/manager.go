package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrRequestInProgress indicates another execution holds the key right now.
var ErrRequestInProgress = errors.New("request with this key is already in progress")

const (
	executionLockTTL = 5 * time.Minute
	pollInterval     = 100 * time.Millisecond
)

// Operation is the guarded unit of work. Its result must be JSON-encodable
// so it can be replayed from the cache.
type Operation func(ctx context.Context) (interface{}, error)

// Result wraps an operation outcome, marking whether it came from the cache.
type Result struct {
	Response  json.RawMessage
	FromCache bool
}

// Manager executes operations at most once per key.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

// NewManager creates a store-backed idempotency manager.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

// Execute runs fn unless a completed record for key already exists, in which
// case the cached response is returned. Concurrent executions of the same key
// either wait for the record or fail with ErrRequestInProgress.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	for {
		locked, err := m.store.Lock(ctx, key, executionLockTTL)
		if err != nil {
			return nil, err
		}

		if !locked {
			record, err := m.store.Get(ctx, key)
			if err != nil {
				return nil, err
			}

			if record == nil {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(pollInterval):
					continue
				}
			}

			switch record.Status {
			case StatusCompleted:
				return &Result{Response: record.Response, FromCache: true}, nil
			default:
				return nil, ErrRequestInProgress
			}
		}

		defer func() {
			if err := m.store.ReleaseLock(ctx, key); err != nil {
				m.log.Error("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
			}
		}()

		// A completed record may already exist from a previous run.
		record, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if record != nil && record.Status == StatusCompleted {
			return &Result{Response: record.Response, FromCache: true}, nil
		}

		// Mark the key as processing so concurrent callers fail fast instead
		// of waiting out the whole execution. The marker shares the lock TTL:
		// if the operation fails it simply expires and a retry runs again.
		if err := m.store.Set(ctx, key, &Record{Status: StatusProcessing}, executionLockTTL); err != nil {
			return nil, err
		}

		response, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(response)
		if err != nil {
			return nil, err
		}

		if err := m.store.Set(ctx, key, &Record{
			Status:   StatusCompleted,
			Response: encoded,
		}, ttl); err != nil {
			return nil, err
		}

		return &Result{Response: encoded, FromCache: false}, nil
	}
}
