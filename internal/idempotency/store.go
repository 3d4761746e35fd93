// Package idempotency guards operations that must not run twice for the same
// logical request, such as the order completion pipeline.
package idempotency

import (
	"context"
	"encoding/json"
	"time"
)

// Status marks the lifecycle of an idempotent operation record.
type Status string

const (
	// StatusProcessing indicates the operation is currently executing.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the operation finished and its response is cached.
	StatusCompleted Status = "completed"
)

// Record is the stored outcome of an idempotent operation.
type Record struct {
	Status   Status          `json:"status"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Store persists idempotency records and short-lived execution locks.
type Store interface {
	// Lock attempts to acquire the execution lock for key.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// ReleaseLock frees the execution lock for key.
	ReleaseLock(ctx context.Context, key string) error
	// Get returns the record for key, or nil when absent.
	Get(ctx context.Context, key string) (*Record, error)
	// Set stores the record for key with the given TTL.
	Set(ctx context.Context, key string, record *Record, ttl time.Duration) error
}
