package weather

import (
	"context"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
)

// Observation is a raw current-conditions reading from a provider. Pointer
// fields distinguish a value the upstream omitted from a genuine zero.
type Observation struct {
	Temperature   *float64
	WindSpeed     *float64
	WindDirection *float64
	WeatherCode   int
	ObservedAt    time.Time
}

// Provider abstracts a current-conditions data source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, coord geo.Coordinate) (Observation, error)
}

// Cache is the slice of the record store the weather layer needs: exact-key
// lookup of the latest record per coordinate, plus writes.
type Cache interface {
	SaveRecord(coord geo.Coordinate, rec Record)
	Latest(coord geo.Coordinate) (Record, error)
}
