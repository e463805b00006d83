package nea

import "github.com/i474232898/nea-sg-weather/internal/weather"

// Station is a physical NEA rain gauge.
type Station struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Location weather.Location `json:"location"`
}

var rainStations = []Station{
	{"S07", "Lim Chu Kang Road", weather.Location{Latitude: 1.4233, Longitude: 103.7133}},
	{"S08", "Upper Thomson Road", weather.Location{Latitude: 1.3701, Longitude: 103.8271}},
	{"S100", "Woodlands Road", weather.Location{Latitude: 1.4172, Longitude: 103.74855}},
	{"S104", "Woodlands Avenue 9", weather.Location{Latitude: 1.44387, Longitude: 103.78538}},
	{"S106", "Pulau Ubin", weather.Location{Latitude: 1.4168, Longitude: 103.9673}},
	{"S107", "East Coast Parkway", weather.Location{Latitude: 1.3135, Longitude: 103.9625}},
	{"S108", "Marina Gardens Drive", weather.Location{Latitude: 1.2799, Longitude: 103.8703}},
	{"S109", "Ang Mo Kio Avenue 5", weather.Location{Latitude: 1.3764, Longitude: 103.8492}},
	{"S111", "Scotts Road", weather.Location{Latitude: 1.31055, Longitude: 103.8365}},
	{"S112", "Lim Chu Kang Road", weather.Location{Latitude: 1.43854, Longitude: 103.70131}},
	{"S113", "Marine Parade Road", weather.Location{Latitude: 1.30648, Longitude: 103.9104}},
	{"S115", "Tuas South Avenue 3", weather.Location{Latitude: 1.29377, Longitude: 103.61843}},
	{"S116", "West Coast Highway", weather.Location{Latitude: 1.281, Longitude: 103.754}},
	{"S117", "Banyan Road", weather.Location{Latitude: 1.256, Longitude: 103.679}},
	{"S121", "Old Choa Chu Kang Road", weather.Location{Latitude: 1.37288, Longitude: 103.72244}},
	{"S122", "Sembawang Road", weather.Location{Latitude: 1.41731, Longitude: 103.8249}},
	{"S24", "Upper Changi Road North", weather.Location{Latitude: 1.3678, Longitude: 103.9826}},
	{"S33", "Jurong Pier Road", weather.Location{Latitude: 1.3081, Longitude: 103.71}},
	{"S40", "Mandai Lake Road", weather.Location{Latitude: 1.4044, Longitude: 103.78962}},
	{"S43", "Kim Chuan Road", weather.Location{Latitude: 1.3399, Longitude: 103.8878}},
	{"S44", "Nanyang Avenue", weather.Location{Latitude: 1.34583, Longitude: 103.68166}},
	{"S50", "Clementi Road", weather.Location{Latitude: 1.3337, Longitude: 103.7768}},
	{"S60", "Sentosa", weather.Location{Latitude: 1.25, Longitude: 103.8279}},
	{"S66", "Kranji Way", weather.Location{Latitude: 1.4387, Longitude: 103.7363}},
	{"S69", "Upper Peirce Reservoir Park", weather.Location{Latitude: 1.37, Longitude: 103.805}},
	{"S71", "Kent Ridge Road", weather.Location{Latitude: 1.2923, Longitude: 103.7815}},
	{"S77", "Alexandra Road", weather.Location{Latitude: 1.2937, Longitude: 103.8125}},
	{"S78", "Poole Road", weather.Location{Latitude: 1.30703, Longitude: 103.89067}},
	{"S79", "Somerset Road", weather.Location{Latitude: 1.3004, Longitude: 103.8372}},
	{"S81", "Punggol Central", weather.Location{Latitude: 1.4029, Longitude: 103.90737}},
	{"S84", "Simei Avenue", weather.Location{Latitude: 1.3437, Longitude: 103.9444}},
	{"S88", "Toa Payoh North", weather.Location{Latitude: 1.3427, Longitude: 103.8482}},
	{"S89", "Tanjong Katong Road", weather.Location{Latitude: 1.31985, Longitude: 103.66162}},
	{"S90", "Bukit Timah Road", weather.Location{Latitude: 1.3191, Longitude: 103.8191}},
	{"S92", "South Buona Vista Road", weather.Location{Latitude: 1.2841, Longitude: 103.7905}},
	{"S94", "Pasir Ris Street 51", weather.Location{Latitude: 1.3662, Longitude: 103.9528}},
}

// RainStations returns a copy of the rain gauge registry in registry order.
func RainStations() []Station {
	out := make([]Station, len(rainStations))
	copy(out, rainStations)
	return out
}
