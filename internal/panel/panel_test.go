package panel_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/metrics"
	"github.com/Harini-2202-S/building-weather/internal/panel"
	"github.com/Harini-2202-S/building-weather/internal/store"
	"github.com/Harini-2202-S/building-weather/internal/weather"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coordA = geo.Coordinate{Lat: 12.8385, Lng: 80.1697}
	coordB = geo.Coordinate{Lat: 13.0827, Lng: 80.2707}
)

// stubFetcher serves per-coordinate records, counts calls, and can hold a
// fetch open until the test releases it.
type stubFetcher struct {
	mu      sync.Mutex
	records map[string]weather.Record
	gates   map[string]chan struct{}
	err     error
	calls   int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		records: make(map[string]weather.Record),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *stubFetcher) serve(coord geo.Coordinate, temperature string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := weather.Fallback(time.Now().UTC())
	rec.Temperature = temperature
	f.records[coord.Key()] = rec
}

// hold makes fetches for coord block until the returned function is called.
func (f *stubFetcher) hold(coord geo.Coordinate) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[coord.Key()] = gate
	f.mu.Unlock()
	return func() { close(gate) }
}

func (f *stubFetcher) Fetch(_ context.Context, coord geo.Coordinate) (weather.Record, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[coord.Key()]
	rec, ok := f.records[coord.Key()]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return weather.Record{}, err
	}
	if !ok {
		rec = weather.Fallback(time.Now().UTC())
	}
	return rec, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestPanel(f *stubFetcher) (*panel.Panel, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	cache := store.NewMemoryStore(10, time.Hour)
	return panel.New(f, cache, m, coordA, slog.Default()), m
}

func waitForPhase(t *testing.T, p *panel.Panel, phase panel.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return p.Snapshot().Phase == phase
	}, time.Second, 5*time.Millisecond)
}

func TestClick_OpensAndLoads(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, _ := newTestPanel(fetcher)

	p.Click(context.Background(), coordA)

	snap := p.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, coordA, snap.Selected)

	waitForPhase(t, p, panel.PhaseLoaded)

	snap = p.Snapshot()
	require.NotNil(t, snap.Record)
	assert.Equal(t, "31.4", snap.Record.Temperature)
	assert.Empty(t, snap.Error)
}

func TestClick_IdenticalCoordinateDoesNotRefetch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, m := newTestPanel(fetcher)

	p.Click(context.Background(), coordA)
	waitForPhase(t, p, panel.PhaseLoaded)
	require.Equal(t, 1, fetcher.callCount())

	p.Click(context.Background(), coordA)

	snap := p.Snapshot()
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "31.4", snap.Record.Temperature)
	assert.Equal(t, 1, fetcher.callCount(), "cached coordinate must not trigger a new fetch")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
}

func TestClick_LastRequestWins(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "10")
	fetcher.serve(coordB, "20")
	releaseA := fetcher.hold(coordA)
	p, m := newTestPanel(fetcher)

	// Click A, then B while A is still in flight; B resolves first.
	p.Click(context.Background(), coordA)
	p.Click(context.Background(), coordB)
	waitForPhase(t, p, panel.PhaseLoaded)

	// A's slow fetch resolves after B has been applied; it must be discarded.
	releaseA()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.StaleDrops) == 1.0
	}, time.Second, 5*time.Millisecond)

	snap := p.Snapshot()
	assert.Equal(t, coordB, snap.Selected)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "20", snap.Record.Temperature, "stale result for A must not clobber B")
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
}

func TestClick_CacheHitSupersedesInFlightFetch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "10")
	fetcher.serve(coordB, "20")
	p, m := newTestPanel(fetcher)

	// Load B once so the next click on it is served from cache.
	p.Click(context.Background(), coordB)
	waitForPhase(t, p, panel.PhaseLoaded)

	// Click A (slow, held open), then B again; B comes from cache.
	releaseA := fetcher.hold(coordA)
	p.Click(context.Background(), coordA)
	p.Click(context.Background(), coordB)

	snap := p.Snapshot()
	require.Equal(t, panel.PhaseLoaded, snap.Phase)
	require.NotNil(t, snap.Record)
	require.Equal(t, "20", snap.Record.Temperature)

	// A's fetch resolves last; it is stale even though B never fetched.
	releaseA()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.StaleDrops) == 1.0
	}, time.Second, 5*time.Millisecond)

	snap = p.Snapshot()
	assert.Equal(t, coordB, snap.Selected)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "20", snap.Record.Temperature, "stale result for A must not clobber the cache-served B")
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
}

func TestClose_PreservesRecordAndSkipsRefetchOnReopen(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, _ := newTestPanel(fetcher)

	p.Click(context.Background(), coordA)
	waitForPhase(t, p, panel.PhaseLoaded)

	p.Close()

	snap := p.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, panel.PhaseClosed, snap.Phase)
	require.NotNil(t, snap.Record, "closing must not discard the last record")

	// Re-opening the same coordinate hits the cache.
	p.Click(context.Background(), coordA)

	snap = p.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestClose_WhileLoadingStaysClosed(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	releaseA := fetcher.hold(coordA)
	p, _ := newTestPanel(fetcher)

	p.Click(context.Background(), coordA)
	p.Close()

	// The fetch resolves after the close; the panel must stay closed.
	releaseA()
	require.Never(t, func() bool {
		snap := p.Snapshot()
		return snap.Open || snap.Phase != panel.PhaseClosed
	}, 100*time.Millisecond, 5*time.Millisecond)

	// The late result was still cached, so re-opening needs no new fetch.
	p.Click(context.Background(), coordA)

	snap := p.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "31.4", snap.Record.Temperature)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestClick_FetcherErrorEntersErroredState(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.err = errors.New("fetcher blew up")
	p, _ := newTestPanel(fetcher)

	p.Click(context.Background(), coordA)
	waitForPhase(t, p, panel.PhaseErrored)

	snap := p.Snapshot()
	assert.True(t, snap.Open)
	assert.NotEmpty(t, snap.Error)
	assert.Nil(t, snap.Record)
}

func TestWarm_PrefetchesDefaultCoordinateWithoutOpening(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, _ := newTestPanel(fetcher)

	p.Warm(context.Background())

	snap := p.Snapshot()
	assert.False(t, snap.Open, "warming must not open the panel")
	assert.Equal(t, panel.PhaseClosed, snap.Phase)
	require.Equal(t, 1, fetcher.callCount())

	// The first click on the default coordinate finds warm data.
	p.Click(context.Background(), coordA)

	snap = p.Snapshot()
	assert.Equal(t, panel.PhaseLoaded, snap.Phase)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "31.4", snap.Record.Temperature)
	assert.Equal(t, 1, fetcher.callCount(), "warm data must be reused without a fetch")
}

func TestWarm_AlreadyCachedIsNoop(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, _ := newTestPanel(fetcher)

	p.Warm(context.Background())
	p.Warm(context.Background())

	assert.Equal(t, 1, fetcher.callCount())
}

func TestPanelOpenGauge(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.serve(coordA, "31.4")
	p, m := newTestPanel(fetcher)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.PanelOpen))

	p.Click(context.Background(), coordA)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelOpen))

	p.Close()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PanelOpen))
}
