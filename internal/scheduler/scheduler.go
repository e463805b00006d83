package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/metrics"
	"github.com/i474232898/nea-sg-weather/internal/weather"
	"github.com/i474232898/nea-sg-weather/internal/weather/nea"
)

// BackoffConfig controls exponential backoff between refresh attempts.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Options configures a Scheduler.
type Options struct {
	Interval time.Duration
	// Timeout bounds a single refresh attempt.
	Timeout time.Duration
	Backoff BackoffConfig
}

// Scheduler periodically refreshes the configured NEA metrics.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	metrics   []weather.Metric
	opts      Options
	collector *metrics.Collector
	logger    *zap.Logger
}

// New creates a new Scheduler. collector may be nil.
func New(service *weather.Service, ms []weather.Metric, opts Options, collector *metrics.Collector, logger *zap.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		metrics:   ms,
		opts:      opts,
		collector: collector,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.metrics) == 0 {
		s.logger.Warn("no metrics configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.opts.Interval).SingletonMode().Do(func() {
		_ = s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce refreshes every configured metric concurrently and returns the joined failures.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	log.Info("running NEA refresh job", zap.Int("metrics", len(s.metrics)))
	started := time.Now()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, m := range s.metrics {
		m := m
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.refresh(ctx, log, m); err != nil {
				log.Error("refresh failed", zap.String("metric", string(m)), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	log.Info("completed NEA refresh job",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

// refresh runs one metric with the retry policy. Unknown metrics and an open circuit
// are not retried.
func (s *Scheduler) refresh(ctx context.Context, log *zap.Logger, metric weather.Metric) error {
	started := time.Now()
	var attempt int
	var err error

	for {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		err = s.service.Refresh(attemptCtx, metric)
		cancel()

		if err == nil || !retryable(err) || attempt >= s.opts.Backoff.MaxRetries {
			break
		}

		delay := backoffDelay(s.opts.Backoff, attempt)
		log.Warn("refresh attempt failed; retrying",
			zap.String("metric", string(metric)),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		case <-timer.C:
		}
		if ctx.Err() != nil {
			break
		}
		attempt++
	}

	s.collector.RecordRefresh(string(metric), time.Since(started).Seconds(), float64(time.Now().Unix()), err)
	return err
}

func retryable(err error) bool {
	return !errors.Is(err, weather.ErrUnknownMetric) && !errors.Is(err, nea.ErrCircuitOpen)
}

func backoffDelay(cfg BackoffConfig, attempt int) time.Duration {
	delay := cfg.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
	if delay > cfg.MaxInterval && cfg.MaxInterval > 0 {
		delay = cfg.MaxInterval
	}
	return delay
}
