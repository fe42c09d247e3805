package geo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kelvins/geocoder"
)

// ErrNoAPIKey is returned when address resolution is requested without a
// configured geocoding API key.
var ErrNoAPIKey = errors.New("geocoder API key is not configured")

// Resolver turns street addresses into coordinates using the Google geocoding
// API. Buildings configured by address instead of raw coordinates are resolved
// once at startup.
type Resolver struct {
	log    *slog.Logger
	apiKey string
}

// NewResolver creates a Resolver. The API key may be empty, in which case
// Resolve fails with ErrNoAPIKey.
func NewResolver(apiKey string, log *slog.Logger) *Resolver {
	geocoder.ApiKey = apiKey
	return &Resolver{
		log:    log.With("component", "geo-resolver"),
		apiKey: apiKey,
	}
}

// Resolve geocodes a free-form street address into a coordinate.
func (r *Resolver) Resolve(address string) (Coordinate, error) {
	if r.apiKey == "" {
		return Coordinate{}, ErrNoAPIKey
	}

	location, err := geocoder.Geocoding(geocoder.Address{Street: address})
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to geocode %q: %w", address, err)
	}

	coord := Coordinate{Lat: location.Latitude, Lng: location.Longitude}
	r.log.Debug("resolved address", "address", address, "coordinate", coord.Key())
	return coord, nil
}
