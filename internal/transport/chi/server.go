// Package chi is the HTTP transport: routing, DTO mapping, auth, and the
// domain error to status code table.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	logpkg "github.com/kailas-cloud/tastefeed/internal/logger"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
	healthuc "github.com/kailas-cloud/tastefeed/internal/usecase/health"
	"github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	preferenceuc "github.com/kailas-cloud/tastefeed/internal/usecase/preference"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// retryAfterSec is advisory backoff for retryable upstream failures.
	retryAfterSec = 1
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the HTTP API. Handlers log through the request-scoped
// logger installed by WideEventMiddleware.
type Server struct {
	preference    *preferenceuc.Service
	search        *searchuc.Service
	catalog       *ingest.Service
	references    *ingest.Service
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	preference *preferenceuc.Service,
	search *searchuc.Service,
	catalog *ingest.Service,
	references *ingest.Service,
	health *healthuc.Service,
) *Server {
	s := &Server{
		preference: preference,
		search:     search,
		catalog:    catalog,
		references: references,
		health:     health,
	}
	s.errorHandlers = []errorHandler{
		versionConflictHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInsufficientSignal, http.StatusUnprocessableEntity, codeInsufficient),
		retryableHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
		retryableHandler(domain.ErrEmbeddingTimeout, http.StatusGatewayTimeout, codeEmbeddingTimeout),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Router assembles the chi router with the full middleware stack.
func Router(s *Server, apiKeys []string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/taste/update", s.TasteUpdate)
		r.Post("/search", s.Search)

		r.Route("/catalog", func(r chi.Router) {
			r.Post("/", s.createItem(s.catalog))
			r.Get("/{id}", s.getItem(s.catalog))
			r.Put("/{id}", s.upsertItem(s.catalog))
			r.Delete("/{id}", s.deleteItem(s.catalog))
		})

		r.Route("/references", func(r chi.Router) {
			r.Get("/", s.listItems(s.references))
			r.Get("/{id}", s.getItem(s.references))
			r.Put("/{id}", s.upsertItem(s.references))
			r.Delete("/{id}", s.deleteItem(s.references))
		})
	})

	return r
}

// TasteUpdate handles POST /api/v1/taste/update.
func (s *Server) TasteUpdate(w http.ResponseWriter, r *http.Request) {
	var req tasteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := s.preference.Update(r.Context(), req.UserID, req.LikedID, req.DislikedID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasteUpdateResponse{
		OK:      true,
		Version: p.Version(),
		Vector:  p.Vector(),
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	ucReq, err := searchRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, ucReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = resultToDTO(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{
		Items:       items,
		Count:       len(items),
		EchoedQuery: req.TextQuery,
	})
}

// createItem handles POST on a keyspace root: the ID is generated.
func (s *Server) createItem(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.doUpsert(w, r, svc, "")
	}
}

// upsertItem handles PUT /{id}.
func (s *Server) upsertItem(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.doUpsert(w, r, svc, chi.URLParam(r, "id"))
	}
}

func (s *Server) doUpsert(w http.ResponseWriter, r *http.Request, svc *ingest.Service, id string) {
	var req upsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	item, created, err := svc.Upsert(ctx, itemSpecFromDTO(id, req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, status, itemToDTO(&item))
}

func (s *Server) getItem(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, itemToDTO(&item))
	}
}

func (s *Server) deleteItem(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) listItems(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > maxListLimit {
				writeError(w, http.StatusBadRequest, codeValidationFailed,
					"limit must be between 1 and "+strconv.Itoa(maxListLimit))
				return
			}
			limit = parsed
		}

		items, err := svc.List(r.Context(), limit)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}

		dtos := make([]itemResponse, len(items))
		for i := range items {
			dtos[i] = itemToDTO(&items[i])
		}
		writeJSON(w, http.StatusOK, itemListResponse{Items: dtos, Count: len(dtos)})
	}
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
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrProfileNotFound,
		domain.ErrInvalidInput,
		domain.ErrInsufficientSignal,
		domain.ErrIndexUnavailable,
		domain.ErrEmbeddingTimeout,
		domain.ErrEmbeddingProvider,
		domain.ErrVersionConflict,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// retryableHandler is a sentinelHandler that also sets Retry-After.
func retryableHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
		writeError(w, status, code, msg)
		return true
	}
}

// versionConflictHandler handles ErrVersionConflict with the stored version
// in the body.
func versionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrVersionConflict) {
		return false
	}
	var vce *domain.VersionConflictError
	if errors.As(err, &vce) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":            codeVersionConflict,
			"message":         msg,
			"current_version": vce.CurrentVersion,
		})
		return true
	}
	writeError(w, http.StatusConflict, codeVersionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger so the line carries the request id.
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
