// Package chi exposes the search engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/domain"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/flavorsearch/internal/logger"
	healthuc "github.com/kailas-cloud/flavorsearch/internal/usecase/health"
	"github.com/kailas-cloud/flavorsearch/internal/version"
)

// statusClientClosedRequest is the de facto status for a request the client abandoned.
const statusClientClosedRequest = 499

const maxRequestBody = 64 << 10

// Searcher ranks the corpus for a validated request.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}

// Suggester completes vocabulary prefixes.
type Suggester interface {
	Complete(prefix string, limit int) []string
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options configure request limits and response rendering.
type Options struct {
	Limits request.Limits
	// ImageBaseURL is prepended to Image_Name; ".jpg" is appended.
	ImageBaseURL string
	SuggestLimit int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        Searcher
	suggest       Suggester
	health        HealthChecker
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. suggest may be nil, which disables /suggest.
func NewServer(search Searcher, suggest Suggester, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if opts.Limits == (request.Limits{}) {
		opts.Limits = request.DefaultLimits()
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = 10
	}
	s := &Server{
		search:  search,
		suggest: suggest,
		health:  health,
		opts:    opts,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(context.Canceled, statusClientClosedRequest, CodeRequestCanceled),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.Welcome)
	r.Get("/search", s.SearchGet)
	r.Post("/search", s.SearchPost)
	r.Get("/api/search", s.SearchGet)
	r.Get("/suggest", s.Suggest)
	r.Get("/health", s.HealthCheck)
	r.Get("/api/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Welcome handles GET /.
func (s *Server) Welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, WelcomeResponse{
		Message: "Welcome to the flavorsearch recipe search API",
		Version: version.Version,
	})
}

// SearchGet handles GET /search?query=&top_k=&page=&limit=.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	s.runSearch(w, r, params)
}

// SearchPost handles POST /search with a JSON body.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, SearchParams(body))
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p SearchParams) {
	req, err := s.searchRequest(p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.searchResponse(req, &page))
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "query", q, &p.Query); err != nil {
		return p, fmt.Errorf("query: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", q, &p.TopK); err != nil {
		return p, fmt.Errorf("top_k: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "number", q, &p.Number); err != nil {
		return p, fmt.Errorf("number: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, fmt.Errorf("page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, fmt.Errorf("limit: %w", err)
	}
	return p, nil
}

func (s *Server) searchRequest(p SearchParams) (request.Request, error) {
	query := ""
	if p.Query != nil {
		query = *p.Query
	}
	topK := s.opts.Limits.DefaultTopK
	switch {
	case p.TopK != nil:
		topK = *p.TopK
	case p.Number != nil:
		topK = *p.Number
	}
	var page, limit int
	if p.Page != nil {
		page = *p.Page
	}
	if p.Limit != nil {
		limit = *p.Limit
	}

	req, err := request.New(query, topK, page, limit, s.opts.Limits)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return req, nil
}

func (s *Server) searchResponse(req request.Request, page *result.Page) SearchResponse {
	items := make([]Recipe, len(page.Hits))
	for i := range page.Hits {
		items[i] = s.recipeToDTO(&page.Hits[i])
	}
	corrections := make([]Correction, len(page.Corrections))
	for i, c := range page.Corrections {
		corrections[i] = Correction{From: c.From, To: c.To}
	}
	return SearchResponse{
		Result:         items,
		Query:          req.Query(),
		CorrectedQuery: page.CorrectedQuery(),
		Corrections:    corrections,
		Page:           page.Page,
		Limit:          page.Limit,
		Total:          page.Total,
		HasMore:        page.HasMore,
	}
}

func (s *Server) recipeToDTO(h *result.Hit) Recipe {
	f := h.Document.Fields()
	rec := Recipe{
		ID:             h.Document.ID(),
		Title:          f.Title,
		Instructions:   f.Instructions,
		Ingredients:    f.Ingredients,
		RelevanceScore: h.Score,
	}
	if f.ImageName != "" {
		rec.Image = s.opts.ImageBaseURL + f.ImageName + ".jpg"
	}
	if f.SourceIndex >= 0 {
		idx := f.SourceIndex
		rec.Index = &idx
	}
	return rec
}

// Suggest handles GET /suggest?prefix=&limit=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	if s.suggest == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "suggestions are disabled")
		return
	}

	var prefix string
	limit := s.opts.SuggestLimit
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "prefix", q, &prefix); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	if limit <= 0 || limit > s.opts.SuggestLimit {
		limit = s.opts.SuggestLimit
	}

	prefix = strings.ToLower(strings.TrimSpace(prefix))
	suggestions := s.suggest.Complete(prefix, limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Prefix: prefix, Suggestions: suggestions})
}

// HealthCheck handles GET /health and GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     string(report.Status),
		Checks:     checks,
		Documents:  report.Stats.Documents,
		Vocabulary: report.Stats.Vocabulary,
		Dimensions: report.Stats.Dimensions,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler exposes the full message: it describes the caller's own input.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	return true
}

// safeMessage returns a sentinel error message for the client without exposing internals.
func safeMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidQuery, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
