// Package history persists optimization results to PostgreSQL for
// offline analysis. The timing core stays stateless; the store is an
// optional sink in the serving layer.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// Record is one stored optimization result.
type Record struct {
	ID        int64                      `json:"id"`
	RequestID string                     `json:"request_id"`
	CreatedAt time.Time                  `json:"created_at"`
	Timing    *signal.IntersectionTiming `json:"timing"`
}

// Store handles timing persistence using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL-backed timing history store.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &Store{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS signal_timings (
			id          BIGSERIAL PRIMARY KEY,
			request_id  TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			cycle       INTEGER NOT NULL,
			saturation  DOUBLE PRECISION NOT NULL,
			timing      JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS signal_timings_created_at_idx
			ON signal_timings (created_at DESC);
	`)
	return err
}

// Insert records one optimization result.
func (s *Store) Insert(ctx context.Context, requestID string, timing *signal.IntersectionTiming) error {
	payload, err := json.Marshal(timing)
	if err != nil {
		return fmt.Errorf("encoding timing: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO signal_timings (request_id, cycle, saturation, timing)
		VALUES ($1, $2, $3, $4)
	`, requestID, timing.CycleLength, timing.SaturationDegree, payload)
	if err != nil {
		return fmt.Errorf("inserting timing: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, request_id, created_at, timing
		FROM signal_timings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying timings: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("scanning timing row: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Timing); err != nil {
			return nil, fmt.Errorf("decoding stored timing: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
