package nea

import (
	"strings"

	"github.com/i474232898/nea-sg-weather/internal/common"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// forecastIcons pairs the open data API forecast text with the icon code the
// legacy NEA website uses for the same condition.
var forecastIcons = []struct {
	text string
	icon string
}{
	{"Fair", "FA"},
	{"Fair (Day)", "FD"},
	{"Fair (Night)", "FN"},
	{"Fair & Warm", "FW"},
	{"Partly Cloudy", "PC"},
	{"Partly Cloudy (Day)", "PD"},
	{"Partly Cloudy (Night)", "PN"},
	{"Cloudy", "CL"},
	{"Hazy", "HZ"},
	{"Slightly Hazy", "LH"},
	{"Windy", "WD"},
	{"Mist", "BR"},
	{"Fog", "FG"},
	{"Light Rain", "LR"},
	{"Moderate Rain", "RA"},
	{"Heavy Rain", "HR"},
	{"Passing Showers", "PS"},
	{"Light Showers", "LS"},
	{"Showers", "SH"},
	{"Heavy Showers", "HS"},
	{"Thundery Showers", "TL"},
	{"Heavy Thundery Showers", "HT"},
	{"Heavy Thundery Showers with Gusty Winds", "HG"},
	{"Drizzle", "DR"},
	{"Overcast", "OC"},
	{"Strong Winds", "SW"},
	{"Strong Winds, Showers", "SS"},
	{"Strong Winds, Rain", "SR"},
	{"Windy, Cloudy", "WC"},
	{"Windy, Fair", "WF"},
	{"Windy, Rain", "WR"},
	{"Windy, Showers", "WS"},
	{"Sunny", "SU"},
}

var (
	iconByText = make(map[string]string, len(forecastIcons))
	textByIcon = make(map[string]string, len(forecastIcons))
)

func init() {
	for _, fi := range forecastIcons {
		iconByText[fi.text] = fi.icon
		textByIcon[fi.icon] = fi.text
	}
}

// IconForText returns the legacy icon code for a forecast text.
func IconForText(text string) (string, bool) {
	icon, ok := iconByText[text]
	return icon, ok
}

// TextForIcon returns the forecast text for a legacy icon code.
func TextForIcon(icon string) (string, bool) {
	text, ok := textByIcon[strings.ToUpper(strings.TrimSpace(icon))]
	return text, ok
}

// conditionKeywords is scanned in order; the first group containing a keyword
// found in the lowercased forecast text decides the condition. "thunder" must
// come before "shower", "heavy" before "rain" and "night" before "fair".
var conditionKeywords = []struct {
	condition weather.Condition
	keywords  []string
}{
	{weather.ConditionLightningRainy, []string{"thunder"}},
	{weather.ConditionPouring, []string{"heavy rain", "heavy showers"}},
	{weather.ConditionRainy, []string{"rain", "shower", "drizzle"}},
	{weather.ConditionPartlyCloudy, []string{"partly cloudy"}},
	{weather.ConditionCloudy, []string{"cloudy", "overcast"}},
	{weather.ConditionFog, []string{"haz", "mist", "fog"}},
	{weather.ConditionWindy, []string{"wind"}},
	{weather.ConditionClearNight, []string{"night"}},
	{weather.ConditionSunny, []string{"fair", "sunny", "warm"}},
}

// NormalizeCondition maps free forecast text to a normalized condition.
// The second return is false when no keyword matched.
func NormalizeCondition(text string) (weather.Condition, bool) {
	lower := strings.ToLower(text)
	for _, ck := range conditionKeywords {
		if common.HasAny(lower, ck.keywords...) {
			return ck.condition, true
		}
	}
	return weather.ConditionUnknown, false
}
