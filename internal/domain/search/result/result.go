package result

import (
	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
)

// Result is a single ranked catalog row.
type Result struct {
	product catalog.Product
	scores  *candidate.Scores
}

// New creates a scored result.
func New(p catalog.Product, s candidate.Scores) Result {
	return Result{product: p, scores: &s}
}

// Unscored creates a result that bypassed scoring (provider-only queries, keyword and SKU lookups).
func Unscored(p catalog.Product) Result {
	return Result{product: p}
}

// FromCandidate converts a ranked candidate.
func FromCandidate(c candidate.Candidate) Result {
	return New(c.Product(), c.Scores())
}

// RowID returns the catalog row id.
func (r *Result) RowID() int { return r.product.RowID() }

// Product returns the catalog row.
func (r *Result) Product() catalog.Product { return r.product }

// Scores returns the similarity scores and whether the row was scored.
func (r *Result) Scores() (candidate.Scores, bool) {
	if r.scores == nil {
		return candidate.Scores{}, false
	}
	return *r.scores, true
}

// Thresholds are the adaptive mean - 2*stddev floors of the filter survivors.
// They are informational and never gate results.
type Thresholds struct {
	Description float64
	TFIDF       float64
	// Valid is false when there were no survivors to compute over.
	Valid bool
	// TFIDFValid is false when the tfidf floor was not computed (provider queries).
	TFIDFValid bool
}

// Response is the outcome of a search.
type Response struct {
	Results []Result
	// NoQuery is set when the query was empty; Results is then nil.
	NoQuery bool
	// ProviderOnly is set when a single-word provider query bypassed scoring.
	ProviderOnly bool
	Thresholds   Thresholds
}

// NoQueryResponse is returned for empty queries.
func NoQueryResponse() Response {
	return Response{NoQuery: true}
}
