package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/buildings"
	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/joho/godotenv"
)

// AppConfig holds the runtime configuration of the service.
type AppConfig struct {
	// Env selects the logging profile: local, development or production.
	Env  string
	Port string

	// HTTPTimeout bounds each outbound call to the weather provider.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often cached records are refreshed.
	RefreshInterval time.Duration

	// DefaultCoordinate is pre-fetched at startup so the first click on the
	// default building finds warm data.
	DefaultCoordinate geo.Coordinate

	// In-memory store retention.
	StoreMaxHistory int           // max records per coordinate (0 = unlimited)
	StoreMaxAge     time.Duration // max record age (0 = unlimited)

	// GeocoderAPIKey enables resolving buildings configured by address.
	GeocoderAPIKey string

	// Buildings configured with explicit coordinates.
	Buildings []buildings.Building

	// BuildingAddresses configured by street address, resolved at startup.
	BuildingAddresses []buildings.Building
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Env:            getenvDefault("APP_ENV", "production"),
		Port:           getenvDefault("PORT", "8080"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	lat, err := strconv.ParseFloat(getenvDefault("DEFAULT_LAT", "12.8385"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LAT: %w", err)
	}
	lng, err := strconv.ParseFloat(getenvDefault("DEFAULT_LNG", "80.1697"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LNG: %w", err)
	}
	cfg.DefaultCoordinate = geo.Coordinate{Lat: lat, Lng: lng}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.Buildings, err = parseBuildings(os.Getenv("BUILDINGS"))
	if err != nil {
		return nil, err
	}
	cfg.BuildingAddresses = parseBuildingAddresses(os.Getenv("BUILDING_ADDRESSES"))

	return cfg, nil
}

// parseBuildings parses "Name=lat,lng;Name2=lat,lng" into buildings with
// explicit coordinates.
func parseBuildings(raw string) ([]buildings.Building, error) {
	if raw == "" {
		return nil, nil
	}

	var out []buildings.Building
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, coords, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid BUILDINGS entry %q: missing '='", entry)
		}
		latStr, lngStr, ok := strings.Cut(coords, ",")
		if !ok {
			return nil, fmt.Errorf("invalid BUILDINGS entry %q: coordinates must be lat,lng", entry)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BUILDINGS entry %q: bad latitude: %w", entry, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BUILDINGS entry %q: bad longitude: %w", entry, err)
		}

		out = append(out, buildings.Building{
			Name:       strings.TrimSpace(name),
			Coordinate: geo.Coordinate{Lat: lat, Lng: lng},
		})
	}
	return out, nil
}

// parseBuildingAddresses parses "Name=street address;Name2=..." into
// buildings pending address resolution.
func parseBuildingAddresses(raw string) []buildings.Building {
	if raw == "" {
		return nil
	}

	var out []buildings.Building
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, address, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out = append(out, buildings.Building{
			Name:    strings.TrimSpace(name),
			Address: strings.TrimSpace(address),
		})
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
