package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TilesGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wipmap_tiles_generated_total",
		Help: "Total number of tiles generated",
	})
	GenerateDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wipmap_generate_duration_ms",
		Help:    "Tile generation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	GenerateErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wipmap_generate_errors_total",
		Help: "Total number of failed tile generations",
	})
	DroppedCellsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wipmap_dropped_cells_total",
		Help: "Cells dropped because their polygon was open or degenerate",
	})
	DiscardedPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wipmap_discarded_points_total",
		Help: "Sample points discarded for lack of an enclosing cell",
	})
	DroppedLandmarksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wipmap_dropped_landmarks_total",
		Help: "Landmark slots left empty",
	})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wipmap_cache_hits_total",
		Help: "Tile cache hits by layer",
	}, []string{"layer"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wipmap_cache_misses_total",
		Help: "Tile cache misses by layer",
	}, []string{"layer"})
	StoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wipmap_store_errors_total",
		Help: "Tile store failures by layer and operation",
	}, []string{"layer", "op"})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wipmap_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(TilesGeneratedTotal)
	prometheus.MustRegister(GenerateDurationMs)
	prometheus.MustRegister(GenerateErrorsTotal)
	prometheus.MustRegister(DroppedCellsTotal)
	prometheus.MustRegister(DiscardedPointsTotal)
	prometheus.MustRegister(DroppedLandmarksTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(StoreErrorsTotal)
	prometheus.MustRegister(RequestsTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
