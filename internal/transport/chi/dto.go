package chi

import (
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
	healthuc "github.com/MSM2025CL/stproject/internal/usecase/health"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeIndexNotReady          ErrorCode = "index_not_ready"
	ErrorCodeDimensionMismatch      ErrorCode = "dimension_mismatch"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /v1/search.
// With consider_offers, price ordering uses min(list, offer); an offer price <= 0
// counts as no offer.
type SearchRequest struct {
	Query          string `json:"query"`
	Ordering       string `json:"ordering,omitempty"`
	ConsiderOffers bool   `json:"consider_offers"`
	TopN           *int   `json:"top_n,omitempty"`
	Show           *int   `json:"show,omitempty"`
}

// KeywordClause is one contains/excludes term of a keyword search.
type KeywordClause struct {
	Term    string `json:"term"`
	Exclude bool   `json:"exclude,omitempty"`
	Op      string `json:"op,omitempty"`
}

// KeywordRequest is the body of POST /v1/search/keyword.
// consider_offers behaves as in SearchRequest.
type KeywordRequest struct {
	Clauses        []KeywordClause `json:"clauses"`
	ConsiderOffers bool            `json:"consider_offers"`
	Show           *int            `json:"show,omitempty"`
	Providers      []string        `json:"providers,omitempty"`
	ProviderMode   string          `json:"provider_mode,omitempty"`
}

// ScoresResponse carries the similarity scores of a semantic hit.
type ScoresResponse struct {
	Info        float64 `json:"info"`
	Description float64 `json:"description"`
	AllInfo     float64 `json:"all_info"`
	TFIDF       float64 `json:"tfidf"`
	Relevance   float64 `json:"relevance"`
}

// ProductItem is one result row.
type ProductItem struct {
	RowID       int             `json:"row_id"`
	SKU         string          `json:"sku"`
	Provider    string          `json:"provider"`
	Description string          `json:"description"`
	Info        string          `json:"info,omitempty"`
	ListPrice   float64         `json:"list_price"`
	OfferPrice  float64         `json:"offer_price,omitempty"`
	Scores      *ScoresResponse `json:"scores,omitempty"`
}

// ThresholdsResponse reports the informational adaptive thresholds.
type ThresholdsResponse struct {
	Description *float64 `json:"description,omitempty"`
	TFIDF       *float64 `json:"tfidf,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Items        []ProductItem       `json:"items"`
	Total        int                 `json:"total"`
	NoQuery      bool                `json:"no_query,omitempty"`
	ProviderOnly bool                `json:"provider_only,omitempty"`
	Thresholds   *ThresholdsResponse `json:"thresholds,omitempty"`
}

// IndexResponse summarizes the ANN build in the health report.
type IndexResponse struct {
	Dimensions int `json:"dimensions"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	Trees      int `json:"trees"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Index   *IndexResponse    `json:"index,omitempty"`
	Version string            `json:"version"`
}

func productItem(r *result.Result) ProductItem {
	p := r.Product()
	item := ProductItem{
		RowID:       p.RowID(),
		SKU:         p.SKU(),
		Provider:    p.Provider(),
		Description: p.Description(),
		Info:        p.Info(),
		ListPrice:   p.ListPrice(),
		OfferPrice:  p.OfferPrice(),
	}
	if s, ok := r.Scores(); ok {
		item.Scores = &ScoresResponse{
			Info:        s.Info,
			Description: s.Description,
			AllInfo:     s.AllInfo,
			TFIDF:       s.TFIDF,
			Relevance:   s.Relevance(),
		}
	}
	return item
}

func productItems(rs []result.Result) []ProductItem {
	items := make([]ProductItem, len(rs))
	for i := range rs {
		items[i] = productItem(&rs[i])
	}
	return items
}

func searchResponse(resp result.Response) SearchResponse {
	out := SearchResponse{
		Items:        productItems(resp.Results),
		Total:        len(resp.Results),
		NoQuery:      resp.NoQuery,
		ProviderOnly: resp.ProviderOnly,
	}
	if t := resp.Thresholds; t.Valid {
		th := &ThresholdsResponse{}
		d := t.Description
		th.Description = &d
		if t.TFIDFValid {
			f := t.TFIDF
			th.TFIDF = &f
		}
		out.Thresholds = th
	}
	return out
}

func healthResponse(report healthuc.Report, version string) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	out := HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version,
	}
	if ix := report.Index; ix != nil {
		out.Index = &IndexResponse{
			Dimensions: ix.Dimensions,
			Indexed:    ix.Indexed,
			Skipped:    ix.Skipped,
			Trees:      ix.Trees,
		}
	}
	return out
}
