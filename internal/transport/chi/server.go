package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/pkgdex/internal/logger"
	healthuc "github.com/kailas-cloud/pkgdex/internal/usecase/health"
	"github.com/kailas-cloud/pkgdex/internal/usecase/jobs"
	searchuc "github.com/kailas-cloud/pkgdex/internal/usecase/search"
)

// Searcher dispatches validated search requests.
type Searcher interface {
	Dispatch(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
	CheckIndex(ctx context.Context) healthuc.IndexReport
}

// EmbeddingRunner runs the embedding batch job.
type EmbeddingRunner interface {
	Run(ctx context.Context, force bool, progress jobs.Progress) (jobs.Report, error)
}

// IndexRunner runs the full-text index rebuild.
type IndexRunner interface {
	Run(ctx context.Context, progress jobs.Progress) (jobs.Report, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the search API.
type Server struct {
	search        Searcher
	health        HealthReporter
	embeddings    EmbeddingRunner
	index         IndexRunner
	logger        *zap.Logger
	errorHandlers []errorHandler

	// one admin job at a time
	jobMu sync.Mutex
}

// NewServer creates an HTTP API server. embeddings and index can be nil,
// which disables the corresponding admin route.
func NewServer(
	search Searcher, health HealthReporter,
	embeddings EmbeddingRunner, index IndexRunner,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:     search,
		health:     health,
		embeddings: embeddings,
		index:      index,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway, CodeModelUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
	}
	return s
}

// Routes registers every route on r. Admin routes require one of adminKeys.
func (s *Server) Routes(r chi.Router, adminKeys []string) {
	r.Get("/search", s.SearchKeyword)
	r.Get("/search/semantic", s.SearchSemantic)
	r.Get("/search/hybrid", s.SearchHybrid)
	r.Get("/search/external-index", s.SearchExternalIndex)
	r.Get("/search/health", s.SearchHealth)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/admin", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(adminKeys))
		r.Post("/sync/embeddings", s.SyncEmbeddings)
		r.Post("/sync/index", s.SyncIndex)
	})
}

// SearchKeyword handles GET /search.
func (s *Server) SearchKeyword(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.dispatch(w, r, mode.Keyword)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PagedResponse{
		Data:       toItems(resp.Results, keywordItem),
		Pagination: resp.Pagination,
	})
}

// SearchSemantic handles GET /search/semantic.
func (s *Server) SearchSemantic(w http.ResponseWriter, r *http.Request) {
	s.vectorSearch(w, r, mode.Semantic)
}

// SearchHybrid handles GET /search/hybrid.
func (s *Server) SearchHybrid(w http.ResponseWriter, r *http.Request) {
	s.vectorSearch(w, r, mode.Hybrid)
}

func (s *Server) vectorSearch(w http.ResponseWriter, r *http.Request, m mode.Mode) {
	resp, ok := s.dispatch(w, r, m)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, VectorResponse{
		Data: toItems(resp.Results, vectorItem),
		Meta: VectorMeta{
			Query:      r.URL.Query().Get("q"),
			Count:      len(resp.Results),
			SearchType: string(m),
		},
	})
}

// SearchExternalIndex handles GET /search/external-index.
func (s *Server) SearchExternalIndex(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.dispatch(w, r, mode.ExternalIndex)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PagedResponse{
		Data:       toItems(resp.Results, indexItem),
		Pagination: resp.Pagination,
		Meta: &IndexMeta{
			ProcessingTimeMs: resp.ProcessingTime.Milliseconds(),
			Query:            r.URL.Query().Get("q"),
		},
	})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, m mode.Mode) (searchuc.Response, bool) {
	params, err := bindSearchParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return searchuc.Response{}, false
	}
	req, err := params.request(m)
	if err != nil {
		s.handleDomainError(w, err)
		return searchuc.Response{}, false
	}
	resp, err := s.search.Dispatch(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return searchuc.Response{}, false
	}
	return resp, true
}

// SearchHealth handles GET /search/health.
func (s *Server) SearchHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.CheckIndex(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, IndexHealthResponse{
		Status:    string(report.Status),
		Documents: report.Documents,
		Error:     report.Error,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// SyncEmbeddings handles POST /admin/sync/embeddings[?force=true].
// The job runs synchronously without a write deadline; the response is its report.
func (s *Server) SyncEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.embeddings == nil {
		writeError(w, http.StatusNotFound, CodeBadRequest, "embedding job not configured")
		return
	}
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		var err error
		if force, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "force must be a boolean")
			return
		}
	}
	s.runJob(w, r, "embeddings", func(ctx context.Context) (jobs.Report, error) {
		return s.embeddings.Run(ctx, force, nil)
	})
}

// SyncIndex handles POST /admin/sync/index.
func (s *Server) SyncIndex(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusNotFound, CodeBadRequest, "index job not configured")
		return
	}
	s.runJob(w, r, "index", func(ctx context.Context) (jobs.Report, error) {
		return s.index.Run(ctx, nil)
	})
}

func (s *Server) runJob(
	w http.ResponseWriter, r *http.Request, name string, run func(context.Context) (jobs.Report, error),
) {
	ctx := logpkg.With(r.Context(), zap.String("job", name))
	if !s.jobMu.TryLock() {
		logpkg.FromContext(ctx).Info("admin job rejected, another job is running")
		writeError(w, http.StatusConflict, CodeConflict, "a sync job is already running")
		return
	}
	defer s.jobMu.Unlock()

	// Jobs outlive the server write timeout; the report must still reach the caller.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logpkg.FromContext(ctx).Warn("cannot lift write deadline for admin job", zap.Error(err))
	}

	report, err := run(ctx)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(ctx).Info("admin job finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
	)
	writeJSON(w, http.StatusOK, report)
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

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Invalid queries carry the validation detail.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrModelUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
