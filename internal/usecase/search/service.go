package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/domain/search/request"
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
	"github.com/MSM2025CL/stproject/internal/logger"
	"github.com/MSM2025CL/stproject/internal/metrics"
)

// Tuning holds the filter and ranker constants.
type Tuning struct {
	MatchRatio       float64
	DescriptionFloor float64
	TFIDFFloor       float64
	TailPercent      int
}

// DefaultTuning returns the production filter constants.
func DefaultTuning() Tuning {
	return Tuning{
		MatchRatio:       0.75,
		DescriptionFloor: 0.2,
		TFIDFFloor:       0.2,
		TailPercent:      5,
	}
}

// Service runs free-text, keyword and SKU searches over an immutable catalog.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	catalog    *catalog.Catalog
	embeddings *catalog.EmbeddingSet
	index      Index
	embed      Embedder
	vectorizer Vectorizer
	tuning     Tuning
	logger     *zap.Logger
}

// New creates a search service.
func New(
	c *catalog.Catalog, e *catalog.EmbeddingSet, idx Index,
	embed Embedder, vectorizer Vectorizer, tuning Tuning, logger *zap.Logger,
) *Service {
	return &Service{
		catalog:    c,
		embeddings: e,
		index:      idx,
		embed:      embed,
		vectorizer: vectorizer,
		tuning:     tuning,
		logger:     logger,
	}
}

// Search runs the full pipeline: provider check, ANN retrieval, scoring, filtering, ranking.
// An empty query yields the "no query" response without touching the index.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Response, error) {
	start := time.Now()
	resp, err := s.search(ctx, req)
	metrics.ObserveSearch(metrics.SearchKindSemantic, start, len(resp.Results), err)
	return resp, err
}

func (s *Service) search(ctx context.Context, req request.Request) (result.Response, error) {
	if req.Empty() {
		return result.NoQueryResponse(), nil
	}
	if s.index == nil {
		return result.Response{}, domain.ErrIndexNotReady
	}
	log := logger.FromContextOr(ctx, s.logger)

	p, bypass := planPool(s.catalog, req.Query())
	if bypass != "" {
		rows := providerProducts(s.catalog, bypass, req.TopN())
		out := make([]result.Result, len(rows))
		for i, row := range rows {
			out[i] = result.Unscored(row)
		}
		log.Debug("Provider query", zap.String("provider", bypass), zap.Int("results", len(out)))
		return result.Response{Results: out, ProviderOnly: true}, nil
	}

	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return result.Response{}, fmt.Errorf("vectorize query: %w", err)
	}
	if len(emb.Embedding) != s.index.Dimensions() {
		return result.Response{}, fmt.Errorf("query embedding has %d dimensions, index has %d: %w",
			len(emb.Embedding), s.index.Dimensions(), domain.ErrDimensionMismatch)
	}

	hits, err := s.index.Query(emb.Embedding, req.TopN())
	if err != nil {
		return result.Response{}, fmt.Errorf("query index: %w", err)
	}

	q := queryVectors{embedding: emb.Embedding, tfidf: s.vectorizer.Transform(req.Query())}
	set := s.score(ctx, hits, q, p)
	survivors, th, st := filter(req.Query(), set.Items(), p.hasProvider(), s.tuning)
	ranked := rank(survivors, req.Ordering(), req.ConsiderOffers(), req.Show(), s.tuning.TailPercent)

	metrics.ObserveStage("hits", len(hits))
	metrics.ObserveStage("scored", st.scored)
	metrics.ObserveStage("matched", st.matched)
	metrics.ObserveStage("filtered", st.survivors)
	log.Debug("Search pipeline",
		zap.Int("hits", len(hits)),
		zap.Int("scored", st.scored),
		zap.Int("matched", st.matched),
		zap.Int("filtered", st.survivors),
		zap.Int("returned", len(ranked)),
		zap.Bool("has_provider", p.hasProvider()),
		zap.Float64("description_threshold", th.Description),
		zap.Float64("tfidf_threshold", th.TFIDF),
	)

	out := make([]result.Result, len(ranked))
	for i, c := range ranked {
		out[i] = result.FromCandidate(c)
	}
	return result.Response{Results: out, Thresholds: th}, nil
}
