// Package app is the composition root shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/config"
	"github.com/MSM2025CL/stproject/internal/db"
	dbRedis "github.com/MSM2025CL/stproject/internal/db/redis"
	"github.com/MSM2025CL/stproject/internal/domain"
	domcat "github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/metrics"
	catalogrepo "github.com/MSM2025CL/stproject/internal/repository/catalog"
	"github.com/MSM2025CL/stproject/internal/repository/embcache"
	openaiEmb "github.com/MSM2025CL/stproject/internal/transport/openai"
	"github.com/MSM2025CL/stproject/internal/tfidf"
	healthuc "github.com/MSM2025CL/stproject/internal/usecase/health"
	searchuc "github.com/MSM2025CL/stproject/internal/usecase/search"
)

// App holds the wired services over one immutable catalog snapshot.
type App struct {
	Catalog *domcat.Catalog
	Index   *ann.Index
	Search  *searchuc.Service
	Health  *healthuc.Service

	store db.Store
}

// RegisterMetrics registers the service metrics with the default registry.
// Call once per process.
func RegisterMetrics() {
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
}

// New loads the catalog and vectorizer, builds the ANN index and wires the
// embedder chain. The returned App must be closed.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	snap, err := catalogrepo.NewLoader(logger).Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	vectorizer, err := tfidf.Load(cfg.Catalog.VectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}

	idx, err := searchuc.BuildIndex(ctx, snap.Catalog, snap.Embeddings, ann.Config{
		Trees:      cfg.Index.Trees,
		LeafSize:   cfg.Index.LeafSize,
		Seed:       cfg.Index.Seed,
		Dimensions: cfg.Index.Dimensions,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := snap.Embeddings.CheckWidths(idx.Dimensions(), idx.Dimensions(), vectorizer.Dimensions()); err != nil {
		return nil, fmt.Errorf("check catalog embeddings: %w", err)
	}

	a := &App{Catalog: snap.Catalog, Index: idx}

	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = openCache(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.store = cache
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := buildEmbedder(base, cache, cfg, idx.Dimensions(), logger)

	a.Search = searchuc.New(
		snap.Catalog, snap.Embeddings, idx, embedder, vectorizer, Tuning(cfg.Search), logger,
	)

	// Pass nil interface (not typed nil pointer) when no cache is configured.
	var pinger healthuc.CachePinger
	if cache != nil {
		pinger = cache
	}
	a.Health = healthuc.New(idx, pinger, base)

	return a, nil
}

// Close releases the cache connection, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// Tuning maps search config onto the pipeline constants.
func Tuning(c config.SearchConfig) searchuc.Tuning {
	return searchuc.Tuning{
		MatchRatio:       c.MatchRatio,
		DescriptionFloor: c.DescriptionFloor,
		TFIDFFloor:       c.TFIDFFloor,
		TailPercent:      c.TailPercent,
	}
}

func openCache(ctx context.Context, c config.CacheConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.Open(ctx, dbRedis.Config{
		Addrs:        c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		ReadyTimeout: time.Duration(c.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func buildEmbedder(
	base domain.Embedder,
	cache *dbRedis.Store,
	cfg config.Config,
	dims int,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			Namespace:  cfg.Embedding.Model,
			Dimensions: dims,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.QueryEmbeddingCache, logger)
	}

	// Instruction prefix (outermost: cache key includes instruction)
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
}
