package weather

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a controllable Provider implementation for tests.
type stubProvider struct {
	obs Observation
	err error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Current(_ context.Context, _ geo.Coordinate) (Observation, error) {
	return p.obs, p.err
}

func newTestService(p Provider) *Service {
	m := metrics.New(prometheus.NewRegistry())
	return NewService(p, m, slog.Default())
}

func floatPtr(v float64) *float64 { return &v }

func TestCurrent_Success(t *testing.T) {
	observedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	svc := newTestService(&stubProvider{
		obs: Observation{
			Temperature:   floatPtr(31.4),
			WindSpeed:     floatPtr(11.2),
			WindDirection: floatPtr(180),
			WeatherCode:   61,
			ObservedAt:    observedAt,
		},
	})

	rec := svc.Current(context.Background(), geo.Coordinate{Lat: 12.8385, Lng: 80.1697})

	assert.Equal(t, "31.4", rec.Temperature)
	assert.Equal(t, "11.2", rec.WindSpeed)
	assert.Equal(t, "180", rec.WindDirection)
	assert.Equal(t, 61, rec.WeatherCode)
	assert.Equal(t, "Slight rain", rec.Condition)
	assert.Equal(t, observedAt, rec.ObservedAt)
	assert.Equal(t, DefaultUnits(), rec.Units)
	assert.False(t, rec.Degraded())
}

func TestCurrent_FieldLevelFallback(t *testing.T) {
	svc := newTestService(&stubProvider{
		obs: Observation{
			Temperature: nil,
			WindSpeed:   floatPtr(12.5),
			WeatherCode: 3,
			ObservedAt:  time.Now().UTC(),
		},
	})

	rec := svc.Current(context.Background(), geo.Coordinate{Lat: 1, Lng: 2})

	assert.Equal(t, Sentinel, rec.Temperature)
	assert.Equal(t, "12.5", rec.WindSpeed)
	assert.Equal(t, Sentinel, rec.WindDirection)
	assert.Equal(t, "Overcast", rec.Condition)
	assert.False(t, rec.Degraded(), "one present reading means the record is not degraded")
}

func TestCurrent_TransportFailureYieldsFallbackRecord(t *testing.T) {
	svc := newTestService(&stubProvider{err: errors.New("connection refused")})

	before := time.Now().UTC()
	rec := svc.Current(context.Background(), geo.Coordinate{Lat: 12.8385, Lng: 80.1697})
	after := time.Now().UTC()

	assert.Equal(t, Sentinel, rec.Temperature)
	assert.Equal(t, Sentinel, rec.WindSpeed)
	assert.Equal(t, Sentinel, rec.WindDirection)
	assert.Equal(t, 0, rec.WeatherCode)
	assert.Equal(t, "Clear sky", rec.Condition)
	assert.Equal(t, Units{Temperature: "°C", WindSpeed: "km/h"}, rec.Units)
	assert.True(t, rec.Degraded())

	require.False(t, rec.ObservedAt.Before(before))
	require.False(t, rec.ObservedAt.After(after))
}

func TestCurrent_MissingObservationTimeDefaultsToNow(t *testing.T) {
	svc := newTestService(&stubProvider{
		obs: Observation{Temperature: floatPtr(20), WeatherCode: 0},
	})

	rec := svc.Current(context.Background(), geo.Coordinate{Lat: 1, Lng: 2})

	assert.WithinDuration(t, time.Now().UTC(), rec.ObservedAt, time.Second)
}
