package flow

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner reclaims sessions that have been idle longer than the configured
// TTL. The original flow never expired sessions; without this an abandoned
// conversation would hold its selections forever.
type Cleaner struct {
	store    Store
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(store Store, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		store:    store,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil || c.ttl <= 0 || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	sessions, err := c.store.GetAll(ctx)
	if err != nil {
		c.log.Error("session cleaner failed to list sessions", slog.Any("error", err))
		return
	}

	for _, session := range sessions {
		if session == nil || time.Since(session.UpdatedAt) <= c.ttl {
			continue
		}

		if err := c.store.Clear(ctx, session.UserID); err != nil {
			c.log.Error("session cleaner failed to clear session",
				slog.Int64("user_id", session.UserID), slog.Any("error", err))
			continue
		}

		c.log.Info("idle session reclaimed", slog.Int64("user_id", session.UserID))
	}
}
