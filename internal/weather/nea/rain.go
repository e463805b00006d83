package nea

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// RainReading is one registry station with its latest rainfall in mm.
type RainReading struct {
	StationID string           `json:"stationId"`
	Name      string           `json:"name"`
	Location  weather.Location `json:"location"`
	Value     float64          `json:"value"`
}

// Rain holds one reading per registry station, in registry order. Stations
// missing from the live data are reported as 0.
type Rain struct {
	base

	Timestamp time.Time
	Stations  []RainReading
}

// NewRain creates a rainfall processor.
func NewRain(f *Fetcher) *Rain {
	return &Rain{base: newBase(weather.MetricRainfall, f)}
}

// Refresh fetches the rainfall dataset and replaces the reading.
func (p *Rain) Refresh(ctx context.Context) error { return p.refresh(ctx, p) }

// Snapshot encodes one reading per registry station.
func (p *Rain) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Stations []RainReading `json:"stations"`
	}{p.Stations})
}

// ByID returns the readings keyed by station id.
func (p *Rain) ByID() map[string]RainReading {
	out := make(map[string]RainReading, len(p.Stations))
	for _, s := range p.Stations {
		out[s.StationID] = s
	}
	return out
}

// ParsePrimary merges the live readings into the station registry.
func (p *Rain) ParsePrimary(body []byte) error {
	ts, readings, err := decodeReadings(p.metric, body)
	if err != nil {
		return err
	}
	p.Timestamp = ts
	p.Stations = p.merge(readings)
	p.logger.Debug("data processed")
	return nil
}

// ParseSecondary zero-fills every station: there is no secondary rainfall source.
// The observation time is cleared so the snapshot is stamped with the fetch time.
func (p *Rain) ParseSecondary([]byte) error {
	p.logger.Debug("no live rainfall data, setting all values to 0")
	p.Timestamp = time.Time{}
	p.Stations = p.merge(nil)
	p.logger.Debug("secondary data processed")
	return nil
}

func (p *Rain) merge(readings []weather.StationReading) []RainReading {
	live := make(map[string]float64, len(readings))
	for _, r := range readings {
		if _, dup := live[r.StationID]; !dup {
			live[r.StationID] = r.Value
		}
	}

	registry := RainStations()
	out := make([]RainReading, 0, len(registry))
	for _, st := range registry {
		value, ok := live[st.ID]
		if !ok && readings != nil {
			p.logger.Debug("station missing, setting value to 0", zap.String("station", st.ID))
		}
		out = append(out, RainReading{
			StationID: st.ID,
			Name:      st.Name,
			Location:  st.Location,
			Value:     value,
		})
	}
	return out
}
