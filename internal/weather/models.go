package weather

import (
	"encoding/json"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown        Condition = "unknown"
	ConditionSunny          Condition = "sunny"
	ConditionClearNight     Condition = "clear-night"
	ConditionPartlyCloudy   Condition = "partlycloudy"
	ConditionCloudy         Condition = "cloudy"
	ConditionRainy          Condition = "rainy"
	ConditionPouring        Condition = "pouring"
	ConditionLightningRainy Condition = "lightning-rainy"
	ConditionFog            Condition = "fog"
	ConditionWindy          Condition = "windy"
)

// Metric names one kind of NEA dataset.
type Metric string

const (
	MetricForecast2hr   Metric = "forecast2hr"
	MetricForecast24hr  Metric = "forecast24hr"
	MetricForecast4day  Metric = "forecast4day"
	MetricTemperature   Metric = "temperature"
	MetricHumidity      Metric = "humidity"
	MetricWindDirection Metric = "wind-direction"
	MetricWindSpeed     Metric = "wind-speed"
	MetricWind          Metric = "wind"
	MetricRainfall      Metric = "rainfall"
	MetricPM25          Metric = "pm25"
	MetricUVIndex       Metric = "uv-index"
)

// AllMetrics lists every metric in display order.
var AllMetrics = []Metric{
	MetricForecast2hr,
	MetricForecast24hr,
	MetricForecast4day,
	MetricTemperature,
	MetricHumidity,
	MetricWindDirection,
	MetricWindSpeed,
	MetricWind,
	MetricRainfall,
	MetricPM25,
	MetricUVIndex,
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	for _, known := range AllMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// Source says which endpoint produced a reading.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	// SourceNone means the primary was insufficient and no secondary endpoint exists.
	SourceNone Source = "none"
	// SourceDerived is used for readings computed from other readings (wind).
	SourceDerived Source = "derived"
)

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StationReading is a single sensor value keyed by the station that reported it.
type StationReading struct {
	StationID string  `json:"stationId"`
	Value     float64 `json:"value"`
}

// Snapshot is the normalized, stored view of one metric after a refresh.
// Data holds the metric-specific reading encoded as JSON.
type Snapshot struct {
	Metric    Metric          `json:"metric"`
	Source    Source          `json:"source"`
	Timestamp time.Time       `json:"timestamp"` // as reported by NEA
	FetchedAt time.Time       `json:"fetchedAt"` // always UTC
	Data      json.RawMessage `json:"data"`
}
