package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's Prometheus instruments.
type Metrics struct {
	FetchesTotal *prometheus.CounterVec
	FetchSeconds *prometheus.HistogramVec
	CacheHits    prometheus.Counter
	StaleDrops   prometheus.Counter
	PanelOpen    prometheus.Gauge
}

// New registers all instruments with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FetchesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of upstream weather fetches by outcome.",
		}, []string{"outcome"}),
		FetchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Duration of requests to the weather provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "panel_cache_hits_total",
			Help: "Total number of panel clicks served from the record cache.",
		}),
		StaleDrops: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "panel_stale_results_discarded_total",
			Help: "Total number of fetch results discarded because a newer click superseded them.",
		}),
		PanelOpen: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "panel_open",
			Help: "Whether the weather panel is currently open (1) or closed (0).",
		}),
	}
}
