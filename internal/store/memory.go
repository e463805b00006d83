package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot is available for a given metric.
	ErrNotFound = errors.New("no snapshot for metric")
)

// SnapshotHistory holds a time-ordered list of snapshots for a metric.
type SnapshotHistory struct {
	Snapshots []weather.Snapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: metric, value: history
	data map[weather.Metric]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per metric
	maxAge     time.Duration // optional max age for snapshots, by FetchedAt

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[weather.Metric]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot for its metric and enforces retention.
func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot weather.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snapshot.Metric]
	if !ok {
		history = &SnapshotHistory{}
		s.data[snapshot.Metric] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age. The newest snapshot is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history.Snapshots = history.Snapshots[i:]
	}
	return nil
}

// GetLatest returns the most recent snapshot for a metric.
func (s *MemoryStore) GetLatest(_ context.Context, metric weather.Metric) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[metric]
	if !ok || len(history.Snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a metric fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(_ context.Context, metric weather.Metric, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[metric]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Snapshot
	for _, snap := range history.Snapshots {
		if !snap.FetchedAt.Before(from) && !snap.FetchedAt.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
