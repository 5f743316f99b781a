package search

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
	"github.com/MSM2025CL/stproject/internal/domain/search/keyword"
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
	"github.com/MSM2025CL/stproject/internal/logger"
	"github.com/MSM2025CL/stproject/internal/metrics"
)

// Keyword evaluates a boolean contains/excludes query over the catalog search text.
// Matches are sorted by price ascending (stable) and truncated to show.
func (s *Service) Keyword(
	ctx context.Context, q keyword.Query, considerOffers bool, show int,
) (result.Response, error) {
	start := time.Now()
	if q.Empty() {
		metrics.ObserveSearch(metrics.SearchKindKeyword, start, 0, nil)
		return result.NoQueryResponse(), nil
	}

	var matched []catalog.Product
	for _, row := range s.catalog.Rows() {
		if q.AllowProvider(row.Provider()) && q.Match(row.SearchText()) {
			matched = append(matched, row)
		}
	}
	slices.SortStableFunc(matched, func(a, b catalog.Product) int {
		return cmp.Compare(candidate.PriceKey(a, considerOffers), candidate.PriceKey(b, considerOffers))
	})
	if show > 0 && len(matched) > show {
		matched = matched[:show]
	}

	out := make([]result.Result, len(matched))
	for i, row := range matched {
		out[i] = result.Unscored(row)
	}
	logger.FromContextOr(ctx, s.logger).Debug("Keyword search",
		zap.Int("clauses", len(q.Clauses())),
		zap.Int("results", len(out)),
	)
	metrics.ObserveSearch(metrics.SearchKindKeyword, start, len(out), nil)
	return result.Response{Results: out}, nil
}

// BySKU returns every row with the given provider code, in catalog order.
func (s *Service) BySKU(ctx context.Context, sku string) ([]result.Result, error) {
	start := time.Now()
	rows := s.catalog.BySKU(sku)
	if len(rows) == 0 {
		metrics.ObserveSearch(metrics.SearchKindSKU, start, 0, domain.ErrNotFound)
		return nil, domain.ErrNotFound
	}
	out := make([]result.Result, len(rows))
	for i, row := range rows {
		out[i] = result.Unscored(row)
	}
	logger.FromContextOr(ctx, s.logger).Debug("SKU lookup", zap.String("sku", sku), zap.Int("results", len(out)))
	metrics.ObserveSearch(metrics.SearchKindSKU, start, len(out), nil)
	return out, nil
}
