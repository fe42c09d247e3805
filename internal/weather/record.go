package weather

import (
	"strconv"
	"time"
)

// Sentinel is the placeholder shown in place of a missing numeric reading.
const Sentinel = "--"

// Units describe the measurement units the upstream service reports in.
type Units struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"windspeed"`
}

// DefaultUnits matches Open-Meteo's current-weather defaults.
func DefaultUnits() Units {
	return Units{Temperature: "°C", WindSpeed: "km/h"}
}

// Record is a normalized, always-complete snapshot of current conditions.
// Numeric readings are carried as display strings so that a value the
// upstream omitted can be substituted field-level with Sentinel. A Record is
// constructed atomically and is never partially populated.
type Record struct {
	Temperature   string    `json:"temperature"`
	WindSpeed     string    `json:"windspeed"`
	WindDirection string    `json:"winddirection"`
	WeatherCode   int       `json:"weathercode"`
	Condition     string    `json:"condition"`
	ObservedAt    time.Time `json:"observedAt"`
	Units         Units     `json:"units"`
}

// Fallback builds the degraded record served when no reading is available:
// all sentinels, weather code 0 and the given observation time.
func Fallback(now time.Time) Record {
	return Record{
		Temperature:   Sentinel,
		WindSpeed:     Sentinel,
		WindDirection: Sentinel,
		WeatherCode:   0,
		Condition:     LabelFor(0),
		ObservedAt:    now,
		Units:         DefaultUnits(),
	}
}

// Degraded reports whether every numeric reading is a sentinel, i.e. the
// record was built without any upstream data.
func (r Record) Degraded() bool {
	return r.Temperature == Sentinel && r.WindSpeed == Sentinel && r.WindDirection == Sentinel
}

// formatReading renders a reading for display, substituting Sentinel when the
// upstream omitted the field.
func formatReading(v *float64) string {
	if v == nil {
		return Sentinel
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
