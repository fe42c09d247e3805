package weather

import (
	"context"
	"log/slog"

	"github.com/Harini-2202-S/building-weather/internal/geo"
)

// CachedService reads through the record cache: a cached record for the exact
// coordinate is served as-is, otherwise the adapter fetches and the result is
// cached for later lookups.
type CachedService struct {
	svc   *Service
	cache Cache
	log   *slog.Logger
}

// NewCachedService wraps a Service with a record cache.
func NewCachedService(svc *Service, cache Cache, log *slog.Logger) *CachedService {
	return &CachedService{
		svc:   svc,
		cache: cache,
		log:   log.With("component", "weather-cache"),
	}
}

// Current returns the cached record for the coordinate when one exists, and
// fetches otherwise. Like Service.Current it never fails.
func (c *CachedService) Current(ctx context.Context, coord geo.Coordinate) Record {
	if rec, err := c.cache.Latest(coord); err == nil {
		c.log.DebugContext(ctx, "served from cache", "coordinate", coord.Key())
		return rec
	}
	rec := c.svc.Current(ctx, coord)
	c.cache.SaveRecord(coord, rec)
	return rec
}

// Refresh fetches current conditions for the coordinate and caches the
// result even when a record is already cached. A degraded result does not
// overwrite an existing record, so a flaky upstream cannot evict good data.
func (c *CachedService) Refresh(ctx context.Context, coord geo.Coordinate) {
	rec := c.svc.Current(ctx, coord)
	if rec.Degraded() {
		if _, err := c.cache.Latest(coord); err == nil {
			c.log.DebugContext(ctx, "refresh degraded, keeping cached record", "coordinate", coord.Key())
			return
		}
	}
	c.cache.SaveRecord(coord, rec)
}
