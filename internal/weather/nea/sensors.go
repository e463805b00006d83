package nea

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// readingsPayload is the station reading shape shared by temperature, humidity,
// wind and rainfall.
type readingsPayload struct {
	Data struct {
		Readings []struct {
			Timestamp string                   `json:"timestamp"`
			Data      []weather.StationReading `json:"data"`
		} `json:"readings"`
	} `json:"data"`
}

func decodeReadings(metric weather.Metric, body []byte) (time.Time, []weather.StationReading, error) {
	var payload readingsPayload
	if err := decode(metric, body, &payload); err != nil {
		return time.Time{}, nil, err
	}
	if len(payload.Data.Readings) == 0 {
		return time.Time{}, nil, shapeError(metric, "no readings")
	}
	r := payload.Data.Readings[0]
	ts, err := parseTimestamp(metric, r.Timestamp)
	if err != nil {
		return time.Time{}, nil, err
	}
	return ts, r.Data, nil
}

// Temperature holds the island-wide mean air temperature in °C.
type Temperature struct {
	base

	Timestamp time.Time
	Average   float64
}

// NewTemperature creates an air temperature processor.
func NewTemperature(f *Fetcher) *Temperature {
	return &Temperature{base: newBase(weather.MetricTemperature, f)}
}

// Refresh fetches the air temperature dataset and replaces the reading.
func (p *Temperature) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the mean temperature.
func (p *Temperature) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Average float64 `json:"average"`
	}{p.Average})
}

// ParsePrimary averages the positive station readings. Without any, the
// ErrNoPositiveReadings error is returned and the reading is left untouched.
func (p *Temperature) ParsePrimary(body []byte) error {
	ts, readings, err := decodeReadings(p.metric, body)
	if err != nil {
		return err
	}
	avg, err := weather.ListMean(readings)
	if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Average = avg
	p.logger.Debug("data processed")
	return nil
}

// ParseSecondary is a no-op: there is no secondary temperature source.
func (p *Temperature) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}

// Humidity holds the island-wide mean relative humidity in %.
type Humidity struct {
	base

	Timestamp time.Time
	Average   float64
}

// NewHumidity creates a relative humidity processor.
func NewHumidity(f *Fetcher) *Humidity {
	return &Humidity{base: newBase(weather.MetricHumidity, f)}
}

// Refresh fetches the relative humidity dataset and replaces the reading.
func (p *Humidity) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the mean humidity.
func (p *Humidity) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Average float64 `json:"average"`
	}{p.Average})
}

// ParsePrimary averages the positive station readings, falling back to 0 when
// there are none.
func (p *Humidity) ParsePrimary(body []byte) error {
	ts, readings, err := decodeReadings(p.metric, body)
	if err != nil {
		return err
	}
	avg, err := weather.ListMean(readings)
	if errors.Is(err, weather.ErrNoPositiveReadings) {
		p.logger.Debug("no positive humidity readings, using 0")
		avg = 0
	} else if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Average = avg
	p.logger.Debug("data processed")
	return nil
}

// ParseSecondary is a no-op: there is no secondary humidity source.
func (p *Humidity) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}

// WindDirection holds per-station wind direction in degrees.
type WindDirection struct {
	base

	Timestamp time.Time
	Readings  []weather.StationReading
}

// NewWindDirection creates a wind direction processor.
func NewWindDirection(f *Fetcher) *WindDirection {
	return &WindDirection{base: newBase(weather.MetricWindDirection, f)}
}

// Refresh fetches the wind direction dataset and replaces the reading.
func (p *WindDirection) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the station directions.
func (p *WindDirection) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Readings []weather.StationReading `json:"readings"`
	}{p.Readings})
}

// ParsePrimary takes the latest set of station readings.
func (p *WindDirection) ParsePrimary(body []byte) error {
	ts, readings, err := decodeReadings(p.metric, body)
	if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Readings = readings
	p.logger.Debug("data processed", zap.Int("stations", len(readings)))
	return nil
}

// ParseSecondary is a no-op: there is no secondary wind source.
func (p *WindDirection) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}

// WindSpeed holds per-station wind speed in knots.
type WindSpeed struct {
	base

	Timestamp time.Time
	Readings  []weather.StationReading
}

// NewWindSpeed creates a wind speed processor.
func NewWindSpeed(f *Fetcher) *WindSpeed {
	return &WindSpeed{base: newBase(weather.MetricWindSpeed, f)}
}

// Refresh fetches the wind speed dataset and replaces the reading.
func (p *WindSpeed) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the station speeds.
func (p *WindSpeed) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Readings []weather.StationReading `json:"readings"`
	}{p.Readings})
}

// ParsePrimary takes the latest set of station readings.
func (p *WindSpeed) ParsePrimary(body []byte) error {
	ts, readings, err := decodeReadings(p.metric, body)
	if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Readings = readings
	p.logger.Debug("data processed", zap.Int("stations", len(readings)))
	return nil
}

// ParseSecondary is a no-op: there is no secondary wind source.
func (p *WindSpeed) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}

// PM25 holds the hourly PM2.5 concentration per region.
type PM25 struct {
	base

	Timestamp time.Time
	Readings  map[string]float64
}

// NewPM25 creates a PM2.5 processor.
func NewPM25(f *Fetcher) *PM25 {
	return &PM25{base: newBase(weather.MetricPM25, f)}
}

// Refresh fetches the PM2.5 dataset and replaces the reading.
func (p *PM25) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the regional readings.
func (p *PM25) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Readings map[string]float64 `json:"readings"`
	}{p.Readings})
}

type pm25Primary struct {
	Data struct {
		Items []struct {
			Timestamp string `json:"timestamp"`
			Readings  struct {
				OneHourly map[string]float64 `json:"pm25_one_hourly"`
			} `json:"readings"`
		} `json:"items"`
	} `json:"data"`
}

// ParsePrimary takes the latest hourly PM2.5 value of each region.
func (p *PM25) ParsePrimary(body []byte) error {
	var payload pm25Primary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Items) == 0 {
		return shapeError(p.metric, "no items")
	}
	item := payload.Data.Items[0]
	ts, err := parseTimestamp(p.metric, item.Timestamp)
	if err != nil {
		return err
	}
	if item.Readings.OneHourly == nil {
		return shapeError(p.metric, "no pm25_one_hourly readings")
	}
	p.Timestamp = ts
	p.Readings = item.Readings.OneHourly
	p.logger.Debug("data processed")
	return nil
}

// ParseSecondary is a no-op: there is no secondary PM2.5 source.
func (p *PM25) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}

// UVIndex holds the latest island-wide UV index.
type UVIndex struct {
	base

	Timestamp time.Time
	Index     float64
}

// NewUVIndex creates a UV index processor.
func NewUVIndex(f *Fetcher) *UVIndex {
	return &UVIndex{base: newBase(weather.MetricUVIndex, f)}
}

// Refresh fetches the UV index dataset and replaces the reading.
func (p *UVIndex) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes the current index.
func (p *UVIndex) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Index float64 `json:"index"`
	}{p.Index})
}

type uvPrimary struct {
	Data struct {
		Records []struct {
			Timestamp string `json:"timestamp"`
			Index     []struct {
				Hour  string    `json:"hour"`
				Value flexFloat `json:"value"`
			} `json:"index"`
		} `json:"records"`
	} `json:"data"`
}

// ParsePrimary takes the first (latest) hourly index.
func (p *UVIndex) ParsePrimary(body []byte) error {
	var payload uvPrimary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Records) == 0 || len(payload.Data.Records[0].Index) == 0 {
		return shapeError(p.metric, "no index records")
	}
	rec := payload.Data.Records[0]
	ts, err := parseTimestamp(p.metric, rec.Timestamp)
	if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Index = float64(rec.Index[0].Value)
	p.logger.Debug("data processed")
	return nil
}

// ParseSecondary is a no-op: there is no secondary UV source.
func (p *UVIndex) ParseSecondary([]byte) error {
	p.logger.Debug("secondary data processed")
	return nil
}
