package search

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/ann"
	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
	"github.com/MSM2025CL/stproject/internal/logger"
)

// singularSuffixes are tried in order; the first match is stripped.
var singularSuffixes = []string{"as", "os", "es"}

// singular applies the naive plural stripping used by the recall prefilter.
func singular(word string) string {
	for _, suffix := range singularSuffixes {
		if strings.HasSuffix(word, suffix) {
			return strings.TrimSuffix(word, suffix)
		}
	}
	return word
}

// pool restricts which catalog rows may become candidates.
type pool struct {
	providers []string // lower-cased provider names found in the query
	stem      string
}

// hasProvider reports whether the provider restriction fired.
func (p pool) hasProvider() bool { return len(p.providers) > 0 }

func (p pool) allows(row catalog.Product) bool {
	desc := strings.ToLower(row.Description())
	for _, prov := range p.providers {
		if !providerRow(row, prov, desc) {
			return false
		}
	}
	return strings.Contains(desc, p.stem) || strings.Contains(strings.ToLower(row.Info()), p.stem)
}

// providerRow reports whether a row belongs to a provider or names it in its description.
func providerRow(row catalog.Product, lowerProvider, lowerDescription string) bool {
	return strings.ToLower(row.Provider()) == lowerProvider ||
		strings.Contains(lowerDescription, lowerProvider)
}

// planPool inspects the query against the catalog providers. When the query is a
// single word naming a provider, bypass holds that provider and scoring is skipped.
func planPool(c *catalog.Catalog, query string) (p pool, bypass string) {
	lq := strings.ToLower(query)
	words := strings.Fields(lq)

	if len(words) == 1 {
		for _, prov := range c.Providers() {
			if strings.ToLower(prov) == words[0] {
				return pool{}, words[0]
			}
		}
	}

	for _, prov := range c.Providers() {
		lp := strings.ToLower(prov)
		if strings.Contains(lq, lp) {
			p.providers = append(p.providers, lp)
		}
	}
	if len(words) > 0 {
		p.stem = singular(words[0])
	}
	return p, ""
}

// providerProducts returns every row of a provider in catalog order, capped at limit.
func providerProducts(c *catalog.Catalog, lowerProvider string, limit int) []catalog.Product {
	var out []catalog.Product
	for _, row := range c.Rows() {
		if len(out) >= limit {
			break
		}
		if providerRow(row, lowerProvider, strings.ToLower(row.Description())) {
			out = append(out, row)
		}
	}
	return out
}

// queryVectors are the query representations in each embedding space.
type queryVectors struct {
	embedding []float32
	tfidf     []float32
}

// score assembles candidates for the ANN hits that pass the pool.
func (s *Service) score(ctx context.Context, hits []ann.Hit, q queryVectors, p pool) *candidate.Set {
	log := logger.FromContextOr(ctx, s.logger)
	set := candidate.NewSet(len(hits))

	for _, h := range hits {
		row, ok := s.catalog.Get(h.RowID)
		if !ok {
			log.Debug("Skipping row", zap.Int("row_id", h.RowID), zap.Error(domain.ErrMissingField))
			continue
		}
		if !p.allows(row) {
			continue
		}
		vec, ok := s.embeddings.Get(h.RowID)
		if !ok || !vec.Complete() {
			log.Debug("Skipping row without embeddings",
				zap.Int("row_id", h.RowID), zap.Error(domain.ErrMissingField))
			continue
		}
		allInfo, ok1 := cosine(q.embedding, vec.Info)
		desc, ok2 := cosine(q.embedding, vec.Description)
		tfidf, ok3 := cosine(q.tfidf, vec.TFIDF)
		if !ok1 || !ok2 || !ok3 {
			log.Debug("Skipping row with mismatched embeddings",
				zap.Int("row_id", h.RowID), zap.Error(domain.ErrDimensionMismatch))
			continue
		}

		set.Put(candidate.New(row, candidate.Scores{
			Info:        ann.Similarity(h.Distance),
			AllInfo:     allInfo,
			Description: desc,
			TFIDF:       tfidf,
		}))
	}
	return set
}

// cosine returns the cosine similarity of a and b. A zero vector has similarity 0.
// ok is false when the lengths differ.
func cosine(a, b []float32) (float64, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
