package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const embeddingSubsystem = "query_embedding"

var (
	embeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "requests_total",
			Help:      "Provider calls made to embed search queries",
		},
		[]string{"provider", "model", "outcome"}, // "ok" or a failure kind
	)

	embeddingSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "duration_seconds",
			Help:      "Latency of successful query embedding calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	embeddingTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "tokens_total",
			Help:      "Tokens billed for query embeddings",
		},
		[]string{"provider", "model"},
	)

	// QueryEmbeddingCache counts cache lookups by result: hit, miss or error.
	QueryEmbeddingCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "cache_total",
			Help:      "Query embedding cache lookups",
		},
		[]string{"result"},
	)
)

var registerEmbedding sync.Once

// RegisterEmbeddingMetrics registers the query embedding collectors with the default registry.
func RegisterEmbeddingMetrics() {
	registerEmbedding.Do(func() {
		prometheus.MustRegister(embeddingCalls, embeddingSeconds, embeddingTokens, QueryEmbeddingCache)
	})
}

// EmbeddingSucceeded records a completed provider call.
func EmbeddingSucceeded(provider, model string, took time.Duration, totalTokens int) {
	embeddingCalls.WithLabelValues(provider, model, "ok").Inc()
	embeddingSeconds.WithLabelValues(provider, model).Observe(took.Seconds())
	if totalTokens > 0 {
		embeddingTokens.WithLabelValues(provider, model).Add(float64(totalTokens))
	}
}

// EmbeddingFailed records a failed provider call under its failure kind.
func EmbeddingFailed(provider, model, kind string) {
	embeddingCalls.WithLabelValues(provider, model, kind).Inc()
}
