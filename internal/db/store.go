package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localspot/backend/internal/models"
)

// Store persists the business directory. The service also runs without a
// store, keeping the directory purely in memory.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, name, category, address, city, lat, lng FROM businesses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Business
	for rows.Next() {
		var b models.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Address, &b.City, &b.Lat, &b.Lng); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplaceBusinesses swaps the full directory table inside one transaction.
func (s *Store) ReplaceBusinesses(ctx context.Context, businesses []models.Business) (int64, error) {
	var inserted int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE businesses`); err != nil {
			return err
		}
		rows := make([][]any, 0, len(businesses))
		for _, b := range businesses {
			rows = append(rows, []any{b.ID, b.Name, b.Category, b.Address, b.City, b.Lat, b.Lng})
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"businesses"},
			[]string{"id", "name", "category", "address", "city", "lat", "lng"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	return inserted, err
}

func (s *Store) UpdateBusinessCoordinates(ctx context.Context, id string, lat, lng float64) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE businesses SET lat = $2, lng = $3 WHERE id = $1`, id, lat, lng)
	return err
}
