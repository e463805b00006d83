package weather

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMostFrequent(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"Cloudy"}, "Cloudy"},
		{"clear winner", []string{"Fair", "Cloudy", "Cloudy", "Light Rain"}, "Cloudy"},
		{"tie goes to first seen", []string{"Light Rain", "Fair", "Fair", "Light Rain"}, "Light Rain"},
		{"tie with later run", []string{"Fair", "Cloudy", "Cloudy", "Fair", "Hazy"}, "Fair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MostFrequent(tt.values); got != tt.want {
				t.Errorf("MostFrequent(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestListMean(t *testing.T) {
	got, err := ListMean([]StationReading{
		{StationID: "S24", Value: 27.1},
		{StationID: "S43", Value: 0},
		{StationID: "S44", Value: 28.2},
		{StationID: "S50", Value: 27.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 27.43 {
		t.Errorf("ListMean = %v, want 27.43", got)
	}

	_, err = ListMean([]StationReading{{Value: 0}, {Value: -1}})
	if !errors.Is(err, ErrNoPositiveReadings) {
		t.Errorf("expected ErrNoPositiveReadings, got %v", err)
	}
}

func TestAggregateWindSinglePair(t *testing.T) {
	speeds := []StationReading{{StationID: "S01", Value: 5.0}}
	directions := []StationReading{
		{StationID: "S01", Value: 90},
		{StationID: "S02", Value: 180},
	}

	agg, err := AggregateWind(speeds, directions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.ReadingsUsed != 1 {
		t.Fatalf("ReadingsUsed = %d, want 1", agg.ReadingsUsed)
	}
	if !almostEqual(agg.Speed, 5.0) {
		t.Errorf("Speed = %v, want 5", agg.Speed)
	}
	if !almostEqual(agg.Bearing, 270) {
		t.Errorf("Bearing = %v, want 270", agg.Bearing)
	}
}

func TestAggregateWindAveragesVectors(t *testing.T) {
	speeds := []StationReading{
		{StationID: "S24", Value: 4},
		{StationID: "S43", Value: 4},
	}
	directions := []StationReading{
		{StationID: "S43", Value: 0},
		{StationID: "S24", Value: 90},
	}

	agg, err := AggregateWind(speeds, directions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.ReadingsUsed != 2 {
		t.Fatalf("ReadingsUsed = %d, want 2", agg.ReadingsUsed)
	}
	// From north (towards south) and from east (towards west): resultant points south-west.
	if !almostEqual(agg.Speed, math.Sqrt(8)) {
		t.Errorf("Speed = %v, want %v", agg.Speed, math.Sqrt(8))
	}
	if !almostEqual(agg.Bearing, 225) {
		t.Errorf("Bearing = %v, want 225", agg.Bearing)
	}
}

func TestAggregateWindBearingRange(t *testing.T) {
	for dir := 0.0; dir < 360; dir += 7.5 {
		agg, err := AggregateWind(
			[]StationReading{{StationID: "S1", Value: 3}, {StationID: "S2", Value: 1}},
			[]StationReading{{StationID: "S1", Value: dir}, {StationID: "S2", Value: 359 - dir}},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if agg.Bearing < 0 || agg.Bearing >= 360 {
			t.Errorf("direction %v: bearing %v out of [0, 360)", dir, agg.Bearing)
		}
		if agg.Speed < 0 {
			t.Errorf("direction %v: negative speed %v", dir, agg.Speed)
		}
	}
}

func TestAggregateWindNoPairs(t *testing.T) {
	_, err := AggregateWind(
		[]StationReading{{StationID: "S01", Value: 2}},
		[]StationReading{{StationID: "S02", Value: 45}},
	)
	if !errors.Is(err, ErrNoPairedStations) {
		t.Fatalf("expected ErrNoPairedStations, got %v", err)
	}
}
