package nea

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/nea-sg-weather/internal/common"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// legacyIssueLayout parses the legacy "11.30AM 17 Oct" issue time once a year is appended.
const legacyIssueLayout = "3.04PM 2 Jan 2006"

// AreaForecast is the 2-hour nowcast for one planning area.
type AreaForecast struct {
	Forecast  string            `json:"forecast"`
	Condition weather.Condition `json:"condition"`
	Location  weather.Location  `json:"location"`
}

// Forecast2hr holds the island-wide 2-hour nowcast.
type Forecast2hr struct {
	base

	// Year is injected into the legacy issue time, which carries none.
	// Zero means the current year in Singapore.
	Year int

	Timestamp        time.Time
	CurrentCondition string
	AreaForecast     map[string]AreaForecast
}

// NewForecast2hr creates a 2-hour nowcast processor.
func NewForecast2hr(f *Fetcher) *Forecast2hr {
	return &Forecast2hr{base: newBase(weather.MetricForecast2hr, f)}
}

// Refresh runs one fetch cycle.
func (p *Forecast2hr) Refresh(ctx context.Context) error {
	return p.refresh(ctx, p)
}

// Snapshot encodes the current reading.
func (p *Forecast2hr) Snapshot() (weather.Snapshot, error) {
	return p.snapshot(p.Timestamp, struct {
		CurrentCondition string                  `json:"currentCondition"`
		Condition        weather.Condition       `json:"condition"`
		Areas            map[string]AreaForecast `json:"areas"`
	}{p.CurrentCondition, normalizedOrUnknown(p.CurrentCondition), p.AreaForecast})
}

type forecast2hrPrimary struct {
	Data struct {
		AreaMetadata []struct {
			Name          string `json:"name"`
			LabelLocation struct {
				Latitude  flexFloat `json:"latitude"`
				Longitude flexFloat `json:"longitude"`
			} `json:"label_location"`
		} `json:"area_metadata"`
		Items []struct {
			Timestamp string `json:"timestamp"`
			Forecasts []struct {
				Area     string        `json:"area"`
				Forecast conditionText `json:"forecast"`
			} `json:"forecasts"`
		} `json:"items"`
	} `json:"data"`
}

// ParsePrimary reads the open data API shape.
func (p *Forecast2hr) ParsePrimary(body []byte) error {
	var payload forecast2hrPrimary
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

	locations := make(map[string]weather.Location, len(payload.Data.AreaMetadata))
	for _, md := range payload.Data.AreaMetadata {
		locations[md.Name] = weather.Location{
			Latitude:  float64(md.LabelLocation.Latitude),
			Longitude: float64(md.LabelLocation.Longitude),
		}
	}

	conditions := make([]string, 0, len(item.Forecasts))
	areas := make(map[string]AreaForecast, len(item.Forecasts))
	for _, fc := range item.Forecasts {
		text := string(fc.Forecast)
		conditions = append(conditions, text)
		areas[fc.Area] = AreaForecast{
			Forecast:  text,
			Condition: normalizedOrUnknown(text),
			Location:  locations[fc.Area],
		}
	}

	p.Timestamp = ts
	p.CurrentCondition = weather.MostFrequent(conditions)
	p.AreaForecast = areas
	p.logger.Debug("data processed")
	return nil
}

type forecast2hrSecondary struct {
	Channel2HrForecast struct {
		Item struct {
			ForecastIssue struct {
				DateTimeStr string `json:"DateTimeStr"`
			} `json:"ForecastIssue"`
			WeatherForecast struct {
				Area []struct {
					Name     string    `json:"Name"`
					Forecast string    `json:"Forecast"`
					Lat      flexFloat `json:"Lat"`
					Lon      flexFloat `json:"Lon"`
				} `json:"Area"`
			} `json:"WeatherForecast"`
		} `json:"Item"`
	} `json:"Channel2HrForecast"`
}

// ParseSecondary reads the legacy NEA website shape, where each area carries an
// icon code instead of forecast text.
func (p *Forecast2hr) ParseSecondary(body []byte) error {
	var payload forecast2hrSecondary
	if err := decode(p.metric, body, &payload); err != nil {
		return err
	}
	item := payload.Channel2HrForecast.Item

	ts, err := p.parseLegacyIssue(item.ForecastIssue.DateTimeStr)
	if err != nil {
		return err
	}

	conditions := make([]string, 0, len(item.WeatherForecast.Area))
	areas := make(map[string]AreaForecast, len(item.WeatherForecast.Area))
	for _, a := range item.WeatherForecast.Area {
		text, ok := TextForIcon(a.Forecast)
		if !ok {
			return shapeError(p.metric, "unknown forecast icon %q for %s", a.Forecast, a.Name)
		}
		conditions = append(conditions, text)
		areas[a.Name] = AreaForecast{
			Forecast:  text,
			Condition: normalizedOrUnknown(text),
			Location:  weather.Location{Latitude: float64(a.Lat), Longitude: float64(a.Lon)},
		}
	}

	p.Timestamp = ts
	p.CurrentCondition = weather.MostFrequent(conditions)
	p.AreaForecast = areas
	p.logger.Debug("secondary data processed")
	return nil
}

func (p *Forecast2hr) parseLegacyIssue(s string) (time.Time, error) {
	year := p.Year
	if year == 0 {
		year = p.now().In(common.Singapore).Year()
	}
	value := strings.ToUpper(strings.Join(strings.Fields(s), " ")) + " " + strconv.Itoa(year)
	ts, err := time.ParseInLocation(legacyIssueLayout, value, common.Singapore)
	if err != nil {
		return time.Time{}, shapeError(p.metric, "bad issue time %q", s)
	}
	return ts, nil
}

func normalizedOrUnknown(text string) weather.Condition {
	c, _ := NormalizeCondition(text)
	return c
}
