package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MSM2025CL/stproject/internal/domain"
	"github.com/MSM2025CL/stproject/internal/domain/search/keyword"
	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
	"github.com/MSM2025CL/stproject/internal/domain/search/request"
	"github.com/MSM2025CL/stproject/internal/domain/search/result"
	"github.com/MSM2025CL/stproject/internal/logger"
	healthuc "github.com/MSM2025CL/stproject/internal/usecase/health"
	"github.com/MSM2025CL/stproject/internal/version"
)

// Searcher is the search use case consumed by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Response, error)
	Keyword(ctx context.Context, q keyword.Query, considerOffers bool, show int) (result.Response, error)
	BySKU(ctx context.Context, sku string) ([]result.Result, error)
}

// HealthChecker produces the readiness report.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Limits bounds client-supplied pagination.
type Limits struct {
	DefaultTopN int
	DefaultShow int
	MaxShow     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers of the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, limits Limits, logger *zap.Logger) *Server {
	if limits.DefaultTopN <= 0 {
		limits.DefaultTopN = request.DefaultTopN
	}
	if limits.MaxShow <= 0 || limits.MaxShow > request.MaxShow {
		limits.MaxShow = request.MaxShow
	}
	if limits.DefaultShow <= 0 || limits.DefaultShow > limits.MaxShow {
		limits.DefaultShow = min(request.DefaultShow, limits.MaxShow)
	}
	s := &Server{
		search: search,
		health: health,
		limits: limits,
		logger: logger,
	}
	// Order matters: the first matching sentinel wins.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, ErrorCodeIndexNotReady),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadGateway, ErrorCodeDimensionMismatch),
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/keyword", s.KeywordSearch)
		r.Get("/products/sku/{sku}", s.GetBySKU)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := s.searchRequestFromBody(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(resp))
}

// KeywordSearch handles POST /v1/search/keyword.
func (s *Server) KeywordSearch(w http.ResponseWriter, r *http.Request) {
	var req KeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	show, err := s.show(req.Show)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	clauses := make([]keyword.Clause, len(req.Clauses))
	for i, c := range req.Clauses {
		clauses[i] = keyword.Clause{Term: c.Term, Exclude: c.Exclude, Op: keyword.Operator(c.Op)}
	}
	q, err := keyword.New(clauses, req.Providers, keyword.ProviderMode(req.ProviderMode))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Keyword(r.Context(), q, req.ConsiderOffers, show)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(resp))
}

// GetBySKU handles GET /v1/products/sku/{sku}.
func (s *Server) GetBySKU(w http.ResponseWriter, r *http.Request) {
	var sku string
	err := runtime.BindStyledParameterWithOptions("simple", "sku", chi.URLParam(r, "sku"), &sku,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, fmt.Sprintf("invalid sku: %s", err))
		return
	}

	rows, err := s.search.BySKU(r.Context(), sku)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := productItems(rows)
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse(report, version.Version))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) searchRequestFromBody(req SearchRequest) (request.Request, error) {
	o, ok := ordering.Parse(req.Ordering)
	if !ok {
		return request.Request{}, fmt.Errorf("ordering must be %q or %q", ordering.Price, ordering.Relevance)
	}

	topN := s.limits.DefaultTopN
	if req.TopN != nil {
		if *req.TopN <= 0 || *req.TopN > request.MaxTopN {
			return request.Request{}, fmt.Errorf("top_n must be between 1 and %d", request.MaxTopN)
		}
		topN = *req.TopN
	}

	show, err := s.show(req.Show)
	if err != nil {
		return request.Request{}, err
	}

	r, err := request.New(req.Query, o, req.ConsiderOffers, topN, show)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func (s *Server) show(p *int) (int, error) {
	if p == nil {
		return s.limits.DefaultShow, nil
	}
	if *p <= 0 || *p > s.limits.MaxShow {
		return 0, fmt.Errorf("show must be between 1 and %d", s.limits.MaxShow)
	}
	return *p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel message only, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
