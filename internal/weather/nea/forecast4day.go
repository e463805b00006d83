package nea

import (
	"context"
	"time"

	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// DailyForecast is one day of the 4-day outlook.
type DailyForecast struct {
	Time        time.Time         `json:"time"`
	TempHigh    float64           `json:"tempHigh"`
	TempLow     float64           `json:"tempLow"`
	WindSpeed   float64           `json:"windSpeed"`
	WindBearing string            `json:"windBearing"`
	Forecast    string            `json:"forecast"`
	Condition   weather.Condition `json:"condition"`
}

// Forecast4day holds the 4-day outlook in date order.
type Forecast4day struct {
	base

	Forecast []DailyForecast
}

// NewForecast4day creates a 4-day outlook processor.
func NewForecast4day(f *Fetcher) *Forecast4day {
	return &Forecast4day{base: newBase(weather.MetricForecast4day, f)}
}

// Refresh runs one fetch cycle.
func (p *Forecast4day) Refresh(ctx context.Context) error {
	return p.refresh(ctx, p)
}

// Snapshot encodes the current reading.
func (p *Forecast4day) Snapshot() (weather.Snapshot, error) {
	var ts time.Time
	if len(p.Forecast) > 0 {
		ts = p.Forecast[0].Time
	}
	return p.snapshot(ts, struct {
		Days []DailyForecast `json:"days"`
	}{p.Forecast})
}

type outlookEntry struct {
	Timestamp   string `json:"timestamp"`
	Temperature struct {
		High flexFloat `json:"high"`
		Low  flexFloat `json:"low"`
	} `json:"temperature"`
	Wind struct {
		Speed struct {
			High flexFloat `json:"high"`
			Low  flexFloat `json:"low"`
		} `json:"speed"`
		Direction string `json:"direction"`
	} `json:"wind"`
	Forecast conditionText `json:"forecast"`
}

type forecast4dayPrimary struct {
	Data struct {
		Records []struct {
			Forecasts []outlookEntry `json:"forecasts"`
		} `json:"records"`
	} `json:"data"`
}

// ParsePrimary reads the open data API shape. Wind speed is the mean of the
// reported range.
func (p *Forecast4day) ParsePrimary(body []byte) error {
	var payload forecast4dayPrimary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Records) == 0 {
		return shapeError(p.metric, "no records")
	}

	days, err := p.build(payload.Data.Records[0].Forecasts, func(e outlookEntry) float64 {
		return (float64(e.Wind.Speed.High) + float64(e.Wind.Speed.Low)) / 2
	})
	if err != nil {
		return err
	}
	p.Forecast = days
	p.logger.Debug("data processed")
	return nil
}

type forecast4daySecondary struct {
	Items []struct {
		Forecasts []outlookEntry `json:"forecasts"`
	} `json:"items"`
}

// ParseSecondary reads the legacy NEA website shape. Wind speed is the upper
// bound of the reported range, as the legacy site publishes it.
func (p *Forecast4day) ParseSecondary(body []byte) error {
	var payload forecast4daySecondary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Items) == 0 {
		return shapeError(p.metric, "no items")
	}

	days, err := p.build(payload.Items[0].Forecasts, func(e outlookEntry) float64 {
		return float64(e.Wind.Speed.High)
	})
	if err != nil {
		return err
	}
	p.Forecast = days
	p.logger.Debug("secondary data processed")
	return nil
}

// build keeps entries whose text maps to a condition, in source order.
func (p *Forecast4day) build(entries []outlookEntry, windSpeed func(outlookEntry) float64) ([]DailyForecast, error) {
	days := make([]DailyForecast, 0, len(entries))
	for _, e := range entries {
		cond, ok := NormalizeCondition(string(e.Forecast))
		if !ok {
			p.logger.Debug("skipping day with unmapped forecast")
			continue
		}
		ts, err := parseTimestamp(p.metric, e.Timestamp)
		if err != nil {
			return nil, err
		}
		days = append(days, DailyForecast{
			Time:        ts,
			TempHigh:    float64(e.Temperature.High),
			TempLow:     float64(e.Temperature.Low),
			WindSpeed:   windSpeed(e),
			WindBearing: e.Wind.Direction,
			Forecast:    string(e.Forecast),
			Condition:   cond,
		})
	}
	return days, nil
}
