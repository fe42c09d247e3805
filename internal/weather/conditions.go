package weather

import "fmt"

// conditionLabels maps WMO weather interpretation codes, as reported by the
// Open-Meteo current-weather endpoint, to human-readable labels.
var conditionLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// LabelFor returns the label for a WMO weather code. Codes outside the table
// yield a generated label embedding the numeric code, so the function is
// total over all integers.
func LabelFor(code int) string {
	if label, ok := conditionLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("Code %d", code)
}
