package panel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/metrics"
	"github.com/Harini-2202-S/building-weather/internal/weather"
	"github.com/google/uuid"
)

// Phase identifies where the weather panel is in its lifecycle.
type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseErrored Phase = "errored"
)

// Fetcher produces a record for a coordinate. The production adapter never
// returns an error; a non-nil error drives the defensive errored transition.
type Fetcher interface {
	Fetch(ctx context.Context, coord geo.Coordinate) (weather.Record, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, coord geo.Coordinate) (weather.Record, error)

func (f FetchFunc) Fetch(ctx context.Context, coord geo.Coordinate) (weather.Record, error) {
	return f(ctx, coord)
}

// Snapshot is a read-only copy of the panel state for the presentation layer.
type Snapshot struct {
	Open     bool            `json:"open"`
	Phase    Phase           `json:"phase"`
	Selected geo.Coordinate  `json:"selected"`
	Record   *weather.Record `json:"record,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Panel owns the weather panel state machine: the open flag, the selected
// coordinate, the last record and the loading/error condition. Transitions
// are serialized by its mutex. Fetches run asynchronously; each carries the
// generation it was issued under, and a resolution whose generation is no
// longer current is discarded rather than applied, so a slow early fetch can
// never clobber a newer click's result (last-request-wins).
type Panel struct {
	log     *slog.Logger
	fetcher Fetcher
	cache   weather.Cache
	metrics *metrics.Metrics

	mu       sync.Mutex
	gen      uint64
	open     bool
	phase    Phase
	selected geo.Coordinate
	record   *weather.Record
	errMsg   string
}

// New creates a closed panel with the given default coordinate selected.
func New(
	fetcher Fetcher,
	cache weather.Cache,
	m *metrics.Metrics,
	defaultCoord geo.Coordinate,
	log *slog.Logger,
) *Panel {
	return &Panel{
		log:      log.With("component", "panel"),
		fetcher:  fetcher,
		cache:    cache,
		metrics:  m,
		phase:    PhaseClosed,
		selected: defaultCoord,
	}
}

// Click is the interaction layer's entry point: a pointer click on a building
// with the given coordinate. A coordinate that already has a cached record is
// shown immediately without a fetch; otherwise the panel enters loading and a
// fetch is issued. Re-entrant clicks while loading are legal and restart the
// loading state for the new coordinate.
func (p *Panel) Click(ctx context.Context, coord geo.Coordinate) {
	p.mu.Lock()
	p.selected = coord
	if !p.open {
		p.open = true
		p.metrics.PanelOpen.Set(1)
	}
	p.errMsg = ""

	// Every click advances the generation, cache hit or not, so any fetch
	// still in flight for an earlier click resolves stale.
	p.gen++

	if rec, err := p.cache.Latest(coord); err == nil {
		p.record = &rec
		p.phase = PhaseLoaded
		p.metrics.CacheHits.Inc()
		p.mu.Unlock()
		p.log.DebugContext(ctx, "Click served from cache", "coordinate", coord.Key())
		return
	}

	gen := p.gen
	p.phase = PhaseLoading
	p.mu.Unlock()

	fetchID := uuid.NewString()
	p.log.DebugContext(ctx, "Fetch issued",
		"fetch_id", fetchID, "coordinate", coord.Key(), "generation", gen)

	go p.resolve(ctx, gen, fetchID, coord)
}

// resolve waits for the fetch to complete and applies the result unless a
// newer click has superseded it.
func (p *Panel) resolve(ctx context.Context, gen uint64, fetchID string, coord geo.Coordinate) {
	rec, err := p.fetcher.Fetch(ctx, coord)
	if err == nil {
		// Cache under the fetched coordinate even when the panel has moved
		// on; a later click on that coordinate then loads without a fetch.
		p.cache.SaveRecord(coord, rec)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		p.metrics.StaleDrops.Inc()
		p.log.DebugContext(ctx, "Discarded stale fetch result",
			"fetch_id", fetchID, "coordinate", coord.Key(), "generation", gen, "current", p.gen)
		return
	}
	if !p.open {
		// Closed while the fetch was in flight. The record is already cached
		// for the next open; the closed phase stays untouched.
		p.log.DebugContext(ctx, "Panel closed before fetch resolved",
			"fetch_id", fetchID, "coordinate", coord.Key())
		return
	}
	if err != nil {
		p.phase = PhaseErrored
		p.errMsg = "weather data is unavailable right now"
		p.log.ErrorContext(ctx, "Fetch failed",
			"fetch_id", fetchID, "coordinate", coord.Key(), "error", err)
		return
	}

	p.record = &rec
	p.phase = PhaseLoaded
	p.errMsg = ""
	p.log.DebugContext(ctx, "Fetch applied", "fetch_id", fetchID, "coordinate", coord.Key())
}

// Close handles the escape key or a backdrop click. The panel closes but the
// last record and selection are retained, so re-opening the same coordinate
// hits the cache instead of re-fetching.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return
	}
	p.open = false
	p.phase = PhaseClosed
	p.metrics.PanelOpen.Set(0)
}

// Warm pre-fetches the default coordinate into the cache without opening the
// panel, so the first click on the default building finds data already
// loaded. It blocks until the fetch completes.
func (p *Panel) Warm(ctx context.Context) {
	p.mu.Lock()
	coord := p.selected
	p.mu.Unlock()

	if _, err := p.cache.Latest(coord); err == nil {
		return
	}

	rec, err := p.fetcher.Fetch(ctx, coord)
	if err != nil {
		p.log.ErrorContext(ctx, "Warm fetch failed", "coordinate", coord.Key(), "error", err)
		return
	}
	p.cache.SaveRecord(coord, rec)
	p.log.DebugContext(ctx, "Warmed default coordinate", "coordinate", coord.Key())
}

// Snapshot returns a read-only copy of the current panel state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Open:     p.open,
		Phase:    p.phase,
		Selected: p.selected,
		Error:    p.errMsg,
	}
	if p.record != nil {
		rec := *p.record
		snap.Record = &rec
	}
	return snap
}
