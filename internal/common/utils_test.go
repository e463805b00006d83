package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("heavy thundery showers", "rain", "thunder") {
		t.Fatalf("expected a match for thunder")
	}
	if HasAny("fair (day)", "rain", "shower") {
		t.Fatalf("expected no match")
	}
	if HasAny("anything") {
		t.Fatalf("no substrings should never match")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{27.456, 2, 27.46},
		{27.454, 2, 27.45},
		{80, 2, 80},
		{-1.005, 1, -1},
	}
	for _, tt := range tests {
		if got := Round(tt.in, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
