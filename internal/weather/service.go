package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownMetric is returned when no refresher is registered for a metric.
var ErrUnknownMetric = errors.New("unknown metric")

// Service orchestrates NEA refreshers and persists their snapshots.
// Refreshers are stateful, so each metric is refreshed by one caller at a time.
type Service struct {
	store      Store
	refreshers map[Metric]Refresher
	locks      map[Metric]*sync.Mutex
	order      []Metric
	logger     *zap.Logger
}

// NewService creates a new Service. Later refreshers for the same metric replace earlier ones.
func NewService(store Store, refreshers []Refresher, logger *zap.Logger) *Service {
	s := &Service{
		store:      store,
		refreshers: make(map[Metric]Refresher, len(refreshers)),
		locks:      make(map[Metric]*sync.Mutex, len(refreshers)),
		logger:     logger.Named("service"),
	}
	for _, r := range refreshers {
		if _, exists := s.refreshers[r.Metric()]; !exists {
			s.order = append(s.order, r.Metric())
			s.locks[r.Metric()] = &sync.Mutex{}
		}
		s.refreshers[r.Metric()] = r
	}
	return s
}

// Metrics returns the metrics this service can refresh, in registration order.
func (s *Service) Metrics() []Metric {
	out := make([]Metric, len(s.order))
	copy(out, s.order)
	return out
}

// Refresh runs one refresh cycle for the metric and stores the resulting snapshot.
// A failed cycle stores nothing so the last good snapshot stays current. The
// metric's lock is held from the fetch until the snapshot is saved, so concurrent
// callers (scheduler and HTTP) never interleave on the same refresher.
func (s *Service) Refresh(ctx context.Context, metric Metric) error {
	r, ok := s.refreshers[metric]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	mu := s.locks[metric]
	mu.Lock()
	defer mu.Unlock()

	if err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh %s: %w", metric, err)
	}

	snapshot, err := r.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", metric, err)
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC()
	}

	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save %s: %w", metric, err)
	}

	s.logger.Debug("snapshot stored",
		zap.String("metric", string(metric)),
		zap.String("source", string(snapshot.Source)),
		zap.Time("timestamp", snapshot.Timestamp),
	)
	return nil
}

// RefreshAll refreshes every registered metric concurrently. Processors share no
// state, so one failing metric does not affect the others; all failures are joined.
func (s *Service) RefreshAll(ctx context.Context) error {
	if len(s.order) == 0 {
		return fmt.Errorf("no refreshers configured")
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, m := range s.order {
		m := m
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Refresh(ctx, m); err != nil {
				s.logger.Warn("refresh failed", zap.String("metric", string(m)), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(ctx context.Context, metric Metric) (Snapshot, error) {
	return s.store.GetLatest(ctx, metric)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(ctx context.Context, metric Metric, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(ctx, metric, from, to)
}
