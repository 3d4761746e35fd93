package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/altynbek07/cafe-order-bot/internal/flow"
)

// Order is one persisted order row: one delivery date of a confirmed order.
type Order struct {
	ClientID     int64
	DeliveryDate time.Time
	Items        []flow.SelectedItem
	TotalPrice   int64
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// InsertBatch writes all rows of one confirmed order in a single
	// transaction, so a mid-batch failure leaves no partial order behind.
	InsertBatch(ctx context.Context, orders []Order) error
}

type orderRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewOrderRepository creates a new SQL-backed order repository.
func NewOrderRepository(db *sql.DB, log *slog.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log,
	}
}

// InsertBatch persists every per-date order row atomically.
func (r *orderRepository) InsertBatch(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	const query = `
		INSERT INTO orders (client_id, delivery_date, items, total_price)
		VALUES ($1, $2, $3, $4)
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}

	for _, order := range orders {
		items, err := json.Marshal(order.Items)
		if err != nil {
			r.rollback(tx)
			return fmt.Errorf("encode order items: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, order.ClientID, order.DeliveryDate, items, order.TotalPrice); err != nil {
			r.rollback(tx)
			if r.log != nil {
				r.log.Error("failed to insert order",
					slog.Int64("client_id", order.ClientID),
					slog.Time("delivery_date", order.DeliveryDate),
					slog.Any("error", err))
			}
			return fmt.Errorf("insert order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.rollback(tx)
		return fmt.Errorf("commit orders: %w", err)
	}

	return nil
}

func (r *orderRepository) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone && r.log != nil {
		r.log.Error("order rollback error", slog.Any("error", err))
	}
}
