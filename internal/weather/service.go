package weather

import (
	"context"
	"log/slog"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/metrics"
)

// Service is the fetch adapter the rest of the system talks to. Its contract
// is that Current never fails: any transport or decoding problem is absorbed
// into a fallback Record, with the cause visible only in logs and metrics.
type Service struct {
	provider Provider
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a Service around the given provider.
func NewService(provider Provider, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		metrics:  m,
		log:      log.With("component", "weather-service"),
		now:      time.Now,
	}
}

// Current fetches current conditions for the coordinate. All failure is
// encoded in-band as a degraded record; callers never see an error and cannot
// distinguish a transport failure from a missing field by the result alone.
func (s *Service) Current(ctx context.Context, coord geo.Coordinate) Record {
	start := time.Now()
	obs, err := s.provider.Current(ctx, coord)
	s.metrics.FetchSeconds.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.ErrorContext(ctx, "Fetch failed, serving fallback record",
			"provider", s.provider.Name(), "coordinate", coord.Key(), "error", err)
		s.metrics.FetchesTotal.WithLabelValues("failure").Inc()
		return Fallback(s.now().UTC())
	}
	s.metrics.FetchesTotal.WithLabelValues("success").Inc()

	observedAt := obs.ObservedAt
	if observedAt.IsZero() {
		observedAt = s.now().UTC()
	}

	return Record{
		Temperature:   formatReading(obs.Temperature),
		WindSpeed:     formatReading(obs.WindSpeed),
		WindDirection: formatReading(obs.WindDirection),
		WeatherCode:   obs.WeatherCode,
		Condition:     LabelFor(obs.WeatherCode),
		ObservedAt:    observedAt,
		Units:         DefaultUnits(),
	}
}
