package health

import (
	"context"

	"github.com/MSM2025CL/stproject/internal/ann"
)

// IndexReporter exposes the ANN build statistics.
type IndexReporter interface {
	Stats() ann.Stats
}

// CachePinger checks query cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
