package nea

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// Wind combines the wind speed and wind direction datasets into one island-wide
// speed and bearing.
type Wind struct {
	base

	Direction *WindDirection
	Speed     *WindSpeed

	Status     weather.WindAggregate
	SpeedAvg   float64
	BearingAvg float64
}

// NewWind creates the wind aggregate with its own direction and speed processors.
func NewWind(f *Fetcher) *Wind {
	b := newBase(weather.MetricWind, f)
	b.source = weather.SourceDerived
	return &Wind{
		base:      b,
		Direction: NewWindDirection(f),
		Speed:     NewWindSpeed(f),
	}
}

// Refresh refreshes direction then speed, then aggregates them. It fails with
// weather.ErrNoPairedStations when no station reports both.
func (w *Wind) Refresh(ctx context.Context) error {
	if err := w.Direction.Refresh(ctx); err != nil {
		return fmt.Errorf("wind direction: %w", err)
	}
	if err := w.Speed.Refresh(ctx); err != nil {
		return fmt.Errorf("wind speed: %w", err)
	}
	if err := w.Aggregate(); err != nil {
		return err
	}
	w.fetchedAt = w.now().UTC()
	return nil
}

// Aggregate recomputes the aggregate from the current sub-readings.
func (w *Wind) Aggregate() error {
	status, err := weather.AggregateWind(w.Speed.Readings, w.Direction.Readings)
	if err != nil {
		return err
	}
	w.Status = status
	w.SpeedAvg = status.Speed
	w.BearingAvg = status.Bearing
	w.logger.Debug("wind aggregated",
		zap.Int("readings_used", status.ReadingsUsed),
		zap.Float64("speed", status.Speed),
		zap.Float64("bearing", status.Bearing),
	)
	return nil
}

// Snapshot encodes the aggregate.
func (w *Wind) Snapshot() (weather.Snapshot, error) {
	return w.snapshot(w.Speed.Timestamp, struct {
		Speed   float64               `json:"speed"`
		Bearing float64               `json:"bearing"`
		Status  weather.WindAggregate `json:"status"`
	}{w.SpeedAvg, w.BearingAvg, w.Status})
}
