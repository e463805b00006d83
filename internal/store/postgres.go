package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

const schema = `
CREATE TABLE IF NOT EXISTS nea_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	metric      TEXT        NOT NULL,
	source      TEXT        NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL,
	data        JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS nea_snapshots_metric_fetched_idx
	ON nea_snapshots (metric, fetched_at DESC);
`

// PostgresStore implements weather.Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// SaveSnapshot persists a snapshot.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snapshot weather.Snapshot) error {
	query := `
		INSERT INTO nea_snapshots (metric, source, observed_at, fetched_at, data)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		string(snapshot.Metric), string(snapshot.Source), snapshot.Timestamp, snapshot.FetchedAt, []byte(snapshot.Data),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the most recently fetched snapshot for a metric.
func (s *PostgresStore) GetLatest(ctx context.Context, metric weather.Metric) (weather.Snapshot, error) {
	query := `
		SELECT metric, source, observed_at, fetched_at, data
		FROM nea_snapshots
		WHERE metric = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, string(metric)))
	if errors.Is(err, pgx.ErrNoRows) {
		return weather.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("postgres: failed to query latest snapshot: %w", err)
	}
	return snap, nil
}

// GetRange returns snapshots for a metric fetched between from and to (inclusive), oldest first.
func (s *PostgresStore) GetRange(ctx context.Context, metric weather.Metric, from, to time.Time) ([]weather.Snapshot, error) {
	query := `
		SELECT metric, source, observed_at, fetched_at, data
		FROM nea_snapshots
		WHERE metric = $1 AND fetched_at BETWEEN $2 AND $3
		ORDER BY fetched_at ASC
	`

	rows, err := s.pool.Query(ctx, query, string(metric), from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var results []weather.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan snapshot row: %w", err)
		}
		results = append(results, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate snapshots: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}

// Health checks database connectivity.
func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func scanSnapshot(row pgx.Row) (weather.Snapshot, error) {
	var (
		snap           weather.Snapshot
		metric, source string
		data           []byte
	)
	if err := row.Scan(&metric, &source, &snap.Timestamp, &snap.FetchedAt, &data); err != nil {
		return weather.Snapshot{}, err
	}
	snap.Metric = weather.Metric(metric)
	snap.Source = weather.Source(source)
	snap.Data = data
	snap.Timestamp = snap.Timestamp.UTC()
	snap.FetchedAt = snap.FetchedAt.UTC()
	return snap, nil
}
