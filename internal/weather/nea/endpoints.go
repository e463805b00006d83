// Package nea fetches and normalizes the Singapore National Environment Agency
// real-time datasets. Each dataset has a primary endpoint on the open data API and,
// for the forecasts, a secondary endpoint on the legacy NEA website that is used
// when the primary answers with an empty or error payload.
package nea

import "github.com/i474232898/nea-sg-weather/internal/weather"

// EndpointPair is the primary and secondary URL of one dataset.
// An empty Secondary means the dataset has no fallback source.
type EndpointPair struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

const (
	primaryBase   = "https://api-open.data.gov.sg/v2/real-time/api/"
	secondaryBase = "https://www.nea.gov.sg/api/"
)

var defaultEndpoints = map[weather.Metric]EndpointPair{
	weather.MetricForecast2hr: {
		Primary:   primaryBase + "two-hr-forecast",
		Secondary: secondaryBase + "WeatherForecast/forecast24hrnowcastmaps/",
	},
	weather.MetricForecast24hr: {
		Primary:   primaryBase + "twenty-four-hr-forecast",
		Secondary: secondaryBase + "Weather24hrs/GetData/",
	},
	weather.MetricForecast4day: {
		Primary:   primaryBase + "four-day-outlook",
		Secondary: secondaryBase + "Weather4DayOutlook/GetData/",
	},
	weather.MetricTemperature:   {Primary: primaryBase + "air-temperature"},
	weather.MetricHumidity:      {Primary: primaryBase + "relative-humidity"},
	weather.MetricWindDirection: {Primary: primaryBase + "wind-direction"},
	weather.MetricWindSpeed:     {Primary: primaryBase + "wind-speed"},
	weather.MetricRainfall:      {Primary: primaryBase + "rainfall"},
	weather.MetricPM25:          {Primary: primaryBase + "pm25"},
	weather.MetricUVIndex:       {Primary: primaryBase + "uv"},
}

var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) nea-sg-weather",
	"Accept":     "application/json",
}

// DefaultEndpoints returns a copy of the built-in endpoint table.
func DefaultEndpoints() map[weather.Metric]EndpointPair {
	out := make(map[weather.Metric]EndpointPair, len(defaultEndpoints))
	for m, p := range defaultEndpoints {
		out[m] = p
	}
	return out
}

// DefaultHeaders returns a copy of the headers sent with every request.
func DefaultHeaders() map[string]string {
	out := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		out[k] = v
	}
	return out
}

// MergeEndpoints returns the default table with the non-empty fields of overrides applied.
func MergeEndpoints(overrides map[weather.Metric]EndpointPair) map[weather.Metric]EndpointPair {
	out := DefaultEndpoints()
	for m, o := range overrides {
		p := out[m]
		if o.Primary != "" {
			p.Primary = o.Primary
		}
		if o.Secondary != "" {
			p.Secondary = o.Secondary
		}
		out[m] = p
	}
	return out
}
