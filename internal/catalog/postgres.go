package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresSource reads the catalog from the categories/products tables.
type PostgresSource struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresSource creates a catalog source backed by the given database.
func NewPostgresSource(db *sql.DB, log *slog.Logger) *PostgresSource {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresSource{
		db:  db,
		log: log,
	}
}

// Fetch loads every category with its products. Categories without products
// are kept with an empty item set so they still show up in listings.
func (s *PostgresSource) Fetch(ctx context.Context) (map[string]map[string]int64, error) {
	const query = `
		SELECT c.name, p.name, p.price
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		ORDER BY c.name, p.name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.log.Error("failed to query catalog", slog.Any("error", err))
		return nil, fmt.Errorf("select catalog: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	catalog := make(map[string]map[string]int64)

	for rows.Next() {
		var (
			category string
			product  sql.NullString
			price    sql.NullInt64
		)

		if err := rows.Scan(&category, &product, &price); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}

		if _, ok := catalog[category]; !ok {
			catalog[category] = make(map[string]int64)
		}

		if product.Valid {
			catalog[category][product.String] = price.Int64
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}

	s.log.Info("catalog loaded", slog.Int("categories", len(catalog)))

	return catalog, nil
}
