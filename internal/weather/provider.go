package weather

import (
	"context"
	"time"
)

// Refresher abstracts one NEA dataset processor (or a composite such as wind).
// Refresh replaces the processor's reading; Snapshot encodes the latest one.
type Refresher interface {
	Metric() Metric
	Refresh(ctx context.Context) error
	Snapshot() (Snapshot, error)
}

// Store is the contract the in-memory store and the postgres store must satisfy.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	GetLatest(ctx context.Context, metric Metric) (Snapshot, error)
	GetRange(ctx context.Context, metric Metric, from, to time.Time) ([]Snapshot, error)
}
