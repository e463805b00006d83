package weather

import (
	"errors"
	"math"

	"github.com/i474232898/nea-sg-weather/internal/common"
)

var (
	// ErrNoPositiveReadings is returned by ListMean when no reading is above zero.
	ErrNoPositiveReadings = errors.New("no positive readings to average")
	// ErrNoPairedStations is returned by AggregateWind when no speed reading shares
	// a station id with a direction reading.
	ErrNoPairedStations = errors.New("no wind stations with both speed and direction")
)

// MostFrequent returns the value with the highest occurrence count.
// Ties go to the value whose first occurrence comes first.
func MostFrequent(values []string) string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best
}

// ListMean averages the readings whose value is above zero, rounded to 2 decimals.
func ListMean(readings []StationReading) (float64, error) {
	var sum float64
	n := 0
	for _, r := range readings {
		if r.Value > 0 {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoPositiveReadings
	}
	return common.Round(sum/float64(n), 2), nil
}

// WindAggregate is the vector average of paired wind speed and direction readings.
type WindAggregate struct {
	NorthSouthSum float64 `json:"nsSum"`
	NorthSouthAvg float64 `json:"nsAvg"`
	EastWestSum   float64 `json:"ewSum"`
	EastWestAvg   float64 `json:"ewAvg"`
	ReadingsUsed  int     `json:"readingsUsed"`
	Speed         float64 `json:"speed"`
	Bearing       float64 `json:"bearing"` // degrees in [0, 360)
}

// AggregateWind pairs speed and direction readings by station id and averages them
// as vectors. Reported directions are where the wind blows from, so 180 degrees is
// added before decomposing.
func AggregateWind(speeds, directions []StationReading) (WindAggregate, error) {
	var agg WindAggregate
	for _, s := range speeds {
		for _, d := range directions {
			if s.StationID != d.StationID {
				continue
			}
			rad := (d.Value + 180) * math.Pi / 180
			agg.NorthSouthSum += s.Value * math.Cos(rad)
			agg.EastWestSum += s.Value * math.Sin(rad)
			agg.ReadingsUsed++
		}
	}
	if agg.ReadingsUsed == 0 {
		return agg, ErrNoPairedStations
	}

	n := float64(agg.ReadingsUsed)
	agg.NorthSouthAvg = agg.NorthSouthSum / n
	agg.EastWestAvg = agg.EastWestSum / n
	agg.Speed = math.Hypot(agg.NorthSouthAvg, agg.EastWestAvg)

	bearing := math.Atan2(agg.EastWestAvg, agg.NorthSouthAvg) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	if bearing >= 360 {
		bearing -= 360
	}
	agg.Bearing = bearing
	return agg, nil
}
