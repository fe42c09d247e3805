package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/weather"
	"github.com/sony/gobreaker"
)

// ErrMissingCurrentWeather is returned when the response body lacks the
// current-conditions section.
var ErrMissingCurrentWeather = errors.New("open-meteo response has no current_weather section")

// openMeteoTimeLayout is the minute-resolution ISO 8601 format the
// current_weather block uses.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo requires no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider backed by the public Open-Meteo
// forecast endpoint, with retries and a circuit breaker around each call.
func NewOpenMeteoProvider(client HTTPClient) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Current fetches current conditions for the coordinate. The coordinate is
// passed through as-is; out-of-range values surface as an upstream error.
func (p *OpenMeteoProvider) Current(ctx context.Context, coord geo.Coordinate) (weather.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coord.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coord.Lng))
		values.Set("current_weather", "true")

		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather *struct {
			Temperature   *float64 `json:"temperature"`
			WindSpeed     *float64 `json:"windspeed"`
			WindDirection *float64 `json:"winddirection"`
			WeatherCode   int      `json:"weathercode"`
			Time          string   `json:"time"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}
	if payload.CurrentWeather == nil {
		return weather.Observation{}, ErrMissingCurrentWeather
	}

	return weather.Observation{
		Temperature:   payload.CurrentWeather.Temperature,
		WindSpeed:     payload.CurrentWeather.WindSpeed,
		WindDirection: payload.CurrentWeather.WindDirection,
		WeatherCode:   payload.CurrentWeather.WeatherCode,
		ObservedAt:    parseObservationTime(payload.CurrentWeather.Time),
	}, nil
}

// parseObservationTime handles both the minute-resolution layout the
// current_weather block uses and full RFC 3339. An unparseable or empty
// timestamp falls back to the current time.
func parseObservationTime(s string) time.Time {
	if ts, err := time.Parse(openMeteoTimeLayout, s); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}
