package search

import (
	"context"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/domain"
)

// Index answers nearest-neighbour queries in the combined-info embedding space.
type Index interface {
	Query(vector []float32, topN int) ([]ann.Hit, error)
	Dimensions() int
}

// Embedder vectorizes query text into the combined-info embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Vectorizer turns query text into a TF-IDF vector.
type Vectorizer interface {
	Transform(text string) []float32
}
