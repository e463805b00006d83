package nea

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/i474232898/nea-sg-weather/internal/common"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// PeriodForecast is one labelled slot, e.g. "Today afternoon".
type PeriodForecast struct {
	Label     string            `json:"label"`
	Forecast  string            `json:"forecast"`
	Condition weather.Condition `json:"condition"`
}

// Forecast24hr holds the 24-hour forecast per region (north, south, east, west, central).
type Forecast24hr struct {
	base

	Timestamp      time.Time
	RegionForecast map[string][]PeriodForecast
}

// NewForecast24hr creates a 24-hour forecast processor.
func NewForecast24hr(f *Fetcher) *Forecast24hr {
	return &Forecast24hr{base: newBase(weather.MetricForecast24hr, f)}
}

// Refresh runs one fetch cycle.
func (p *Forecast24hr) Refresh(ctx context.Context) error {
	return p.refresh(ctx, p)
}

// Snapshot encodes the current reading.
func (p *Forecast24hr) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		Regions map[string][]PeriodForecast `json:"regions"`
	}{p.RegionForecast})
}

// period is the shape-independent view of one forecast period.
type period struct {
	start   string
	regions map[string]conditionText
}

type forecast24hrPrimary struct {
	Data struct {
		Records []struct {
			Timestamp string `json:"timestamp"`
			Periods   []struct {
				TimePeriod struct {
					Start string `json:"start"`
				} `json:"timePeriod"`
				Regions map[string]conditionText `json:"regions"`
			} `json:"periods"`
		} `json:"records"`
	} `json:"data"`
}

// ParsePrimary reads the open data API shape, where each region's condition
// is an object with a "text" field.
func (p *Forecast24hr) ParsePrimary(body []byte) error {
	var payload forecast24hrPrimary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Records) == 0 {
		return shapeError(p.metric, "no records")
	}
	rec := payload.Data.Records[0]

	periods := make([]period, 0, len(rec.Periods))
	for _, pr := range rec.Periods {
		periods = append(periods, period{start: pr.TimePeriod.Start, regions: pr.Regions})
	}
	if err := p.apply(rec.Timestamp, periods); err != nil {
		return err
	}
	p.logger.Debug("data processed")
	return nil
}

type forecast24hrSecondary struct {
	Items []struct {
		Timestamp string `json:"timestamp"`
		Periods   []struct {
			Time struct {
				Start string `json:"start"`
			} `json:"time"`
			Regions map[string]json.RawMessage `json:"regions"`
		} `json:"periods"`
	} `json:"items"`
}

// ParseSecondary reads the legacy NEA website shape, where each region's
// condition is a plain string.
func (p *Forecast24hr) ParseSecondary(body []byte) error {
	var payload forecast24hrSecondary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	if len(payload.Items) == 0 {
		return shapeError(p.metric, "no items")
	}
	item := payload.Items[0]

	periods := make([]period, 0, len(item.Periods))
	for _, pr := range item.Periods {
		regions := make(map[string]conditionText, len(pr.Regions))
		for name, raw := range pr.Regions {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return shapeError(p.metric, "region %s condition is not text", name)
			}
			regions[name] = conditionText(s)
		}
		periods = append(periods, period{start: pr.Time.Start, regions: regions})
	}
	if err := p.apply(item.Timestamp, periods); err != nil {
		return err
	}
	p.logger.Debug("secondary data processed")
	return nil
}

// apply builds the per-region slot lists. The region set comes from the first
// period; every later period must report all of them.
func (p *Forecast24hr) apply(timestamp string, periods []period) error {
	ts, err := parseTimestamp(p.metric, timestamp)
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		return shapeError(p.metric, "no periods")
	}

	regionNames := make([]string, 0, len(periods[0].regions))
	for name := range periods[0].regions {
		regionNames = append(regionNames, name)
	}
	sort.Strings(regionNames)

	now := p.now()
	out := make(map[string][]PeriodForecast, len(regionNames))
	for _, region := range regionNames {
		slots := make([]PeriodForecast, 0, len(periods))
		for _, pr := range periods {
			start, err := parseTimestamp(p.metric, pr.start)
			if err != nil {
				return err
			}
			text, ok := pr.regions[region]
			if !ok {
				return shapeError(p.metric, "period %s has no region %s", pr.start, region)
			}
			slots = append(slots, PeriodForecast{
				Label:     PeriodLabel(start, now),
				Forecast:  string(text),
				Condition: normalizedOrUnknown(string(text)),
			})
		}
		out[region] = slots
	}

	p.Timestamp = ts
	p.RegionForecast = out
	return nil
}

// PeriodLabel names a forecast period by its start. The day part compares the
// start's own calendar date with today in Singapore; the time-of-day part is
// "morning" for 06h, "afternoon" for 12h and "evening" otherwise.
func PeriodLabel(start, now time.Time) string {
	day := "Tomorrow "
	sy, sm, sd := start.Date()
	ny, nm, nd := now.In(common.Singapore).Date()
	if sy == ny && sm == nm && sd == nd {
		day = "Today "
	}

	switch start.Hour() {
	case 6:
		return day + "morning"
	case 12:
		return day + "afternoon"
	default:
		return day + "evening"
	}
}
