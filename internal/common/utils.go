package common

import (
	"math"
	"strings"
	"time"
)

// Singapore is the fixed UTC+8 zone every NEA timestamp is expressed in.
var Singapore = time.FixedZone("SGT", 8*60*60)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
