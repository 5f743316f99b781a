// Package candidate holds the transient per-query scored rows.
package candidate

import (
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
)

// Scores are the four similarity measures of a candidate.
type Scores struct {
	Info        float64 // ANN-derived angular similarity
	Description float64
	AllInfo     float64
	TFIDF       float64
}

// Relevance is the coarse relevance composite: the best of the three cosine scores.
func (s Scores) Relevance() float64 {
	return max(s.TFIDF, s.AllInfo, s.Description)
}

// Candidate is a catalog row scored against one query.
type Candidate struct {
	product catalog.Product
	scores  Scores
}

// New creates a candidate.
func New(p catalog.Product, s Scores) Candidate {
	return Candidate{product: p, scores: s}
}

// RowID returns the catalog row id.
func (c *Candidate) RowID() int { return c.product.RowID() }

// Product returns the underlying catalog row.
func (c *Candidate) Product() catalog.Product { return c.product }

// Scores returns the similarity scores.
func (c *Candidate) Scores() Scores { return c.scores }

// ListPrice returns the row's list price.
func (c *Candidate) ListPrice() float64 { return c.product.ListPrice() }

// OfferPrice returns the row's offer price.
func (c *Candidate) OfferPrice() float64 { return c.product.OfferPrice() }

// SearchText returns the row's indexed search text.
func (c *Candidate) SearchText() string { return c.product.SearchText() }

// PriceKey returns the price used for ordering: min(list, offer) when offers are
// considered, the list price otherwise. An offer price <= 0 means "no offer".
func (c *Candidate) PriceKey(considerOffers bool) float64 {
	return PriceKey(c.product, considerOffers)
}

// PriceKey computes the ordering price of a catalog row.
func PriceKey(p catalog.Product, considerOffers bool) float64 {
	if considerOffers && p.OfferPrice() > 0 {
		return min(p.ListPrice(), p.OfferPrice())
	}
	return p.ListPrice()
}

// Set is an arena of candidates keyed by row id that keeps insertion order.
// Adding an existing row id overwrites it in place.
type Set struct {
	items []Candidate
	index map[int]int
}

// NewSet creates an empty set with room for n candidates.
func NewSet(n int) *Set {
	return &Set{items: make([]Candidate, 0, n), index: make(map[int]int, n)}
}

// Put inserts or overwrites the candidate for its row id.
func (s *Set) Put(c Candidate) {
	if i, ok := s.index[c.RowID()]; ok {
		s.items[i] = c
		return
	}
	s.index[c.RowID()] = len(s.items)
	s.items = append(s.items, c)
}

// Len returns the number of candidates.
func (s *Set) Len() int { return len(s.items) }

// Items returns the candidates in insertion order.
func (s *Set) Items() []Candidate { return s.items }
