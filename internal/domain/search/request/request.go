package request

import (
	"fmt"
	"strings"

	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultTopN    = 3000
	MaxTopN        = 10000
	DefaultShow    = 200
	MaxShow        = 1000
)

// Request is a validated free-text search.
type Request struct {
	query          string
	order          ordering.Ordering
	considerOffers bool
	topN           int
	show           int
}

// New validates and normalizes search parameters.
// Defaults: ordering=price, topN=3000, show=200. A blank query is accepted and
// reported through Empty so callers can answer with a "no query" result.
func New(query string, o ordering.Ordering, considerOffers bool, topN, show int) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if o == "" {
		o = ordering.Price
	}
	if !o.IsValid() {
		return Request{}, fmt.Errorf("invalid ordering: %q", o)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}
	if show <= 0 {
		show = DefaultShow
	}
	if show > MaxShow {
		show = MaxShow
	}

	return Request{
		query:          query,
		order:          o,
		considerOffers: considerOffers,
		topN:           topN,
		show:           show,
	}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Empty reports whether the query has no words.
func (r *Request) Empty() bool { return len(strings.Fields(r.query)) == 0 }

// Ordering returns the final sort order.
func (r *Request) Ordering() ordering.Ordering { return r.order }

// ConsiderOffers reports whether offer prices take part in price ordering.
func (r *Request) ConsiderOffers() bool { return r.considerOffers }

// TopN returns the number of ANN neighbours to retrieve.
func (r *Request) TopN() int { return r.topN }

// Show returns the maximum number of results to return.
func (r *Request) Show() int { return r.show }
