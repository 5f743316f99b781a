package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MSM2025CL/stproject/internal/domain"
)

// Search kinds used as the "kind" label.
const (
	SearchKindSemantic = "semantic"
	SearchKindKeyword  = "keyword"
	SearchKindSKU      = "sku"
)

// Search and index Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches",
		},
		[]string{"kind", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 500, 1000},
		},
		[]string{"kind"},
	)

	SearchStageCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_stage_candidates",
			Help:      "Candidates remaining after each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"stage"},
	)

	IndexItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_items",
			Help:      "Items in the ANN index by state",
		},
		[]string{"state"}, // "indexed" / "skipped"
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers search and index metrics with the default registry.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal, SearchDuration, SearchResults, SearchStageCandidates, IndexItems)
	})
}

// ObserveSearch records one finished search.
func ObserveSearch(kind string, start time.Time, results int, err error) {
	SearchRequestsTotal.WithLabelValues(kind, searchStatus(err)).Inc()
	SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err == nil {
		SearchResults.WithLabelValues(kind).Observe(float64(results))
	}
}

// ObserveStage records the candidate count after a pipeline stage.
func ObserveStage(stage string, n int) {
	SearchStageCandidates.WithLabelValues(stage).Observe(float64(n))
}

// SetIndexItems publishes ANN build counts.
func SetIndexItems(indexed, skipped int) {
	IndexItems.WithLabelValues("indexed").Set(float64(indexed))
	IndexItems.WithLabelValues("skipped").Set(float64(skipped))
}

func searchStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding_error"
	case errors.Is(err, domain.ErrDimensionMismatch):
		return "dimension_mismatch"
	default:
		return "error"
	}
}
