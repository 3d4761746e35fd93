// Package repository provides SQL-backed persistence for clients and orders.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	// Upsert stores a client keyed by email and returns its identifier.
	// Submitting the same email twice yields the same identifier.
	Upsert(ctx context.Context, email string) (int64, error)
}

type clientRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewClientRepository creates a new SQL-backed client repository.
func NewClientRepository(db *sql.DB, log *slog.Logger) ClientRepository {
	return &clientRepository{
		db:  db,
		log: log,
	}
}

// Upsert inserts the client or touches the existing row, returning its id.
func (r *clientRepository) Upsert(ctx context.Context, email string) (int64, error) {
	const query = `
		INSERT INTO clients (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`

	var clientID int64
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&clientID); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert client", slog.Any("error", err))
		}
		return 0, fmt.Errorf("upsert client: %w", err)
	}

	return clientID, nil
}
