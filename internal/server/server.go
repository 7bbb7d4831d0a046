// Package server exposes the analysis pipeline over an HTTP API.
//
// Routes are versioned under /v1. Submitting code for review runs the full
// pipeline synchronously and persists the resulting report; stored reports
// can then be listed, fetched, and deleted.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/config"
	"github.com/avelar/critique/internal/ingest"
	"github.com/avelar/critique/internal/pipeline"
	"github.com/avelar/critique/internal/providers"
	"github.com/avelar/critique/internal/storage"
)

// Server holds the HTTP API dependencies.
type Server struct {
	cfg     config.Config
	engine  *pipeline.Engine
	store   *storage.Store
	limiter *Limiter
	log     *slog.Logger
}

// New assembles a Server from its collaborators.
func New(cfg config.Config, engine *pipeline.Engine, store *storage.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	perMinute := cfg.Server.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Server{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		limiter: NewLimiter(perMinute),
		log:     log,
	}
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(securityHeaders)
	r.Use(s.requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/providers", s.handleProviders)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Use(s.rateLimit)

			r.Post("/reviews", s.handleCreateReview)
			r.Get("/reviews", s.handleListReviews)
			r.Get("/reviews/{id}", s.handleGetReview)
			r.Delete("/reviews/{id}", s.handleDeleteReview)
		})
	})

	return r
}

type reviewRequest struct {
	Filename string `json:"filename"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

type listResponse struct {
	Reports []storage.Record `json:"reports"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	type providerStatus struct {
		Name       string `json:"name"`
		Active     bool   `json:"active"`
		Configured bool   `json:"configured"`
	}
	statuses := make([]providerStatus, 0, len(providers.Backends()))
	for _, b := range providers.Backends() {
		ps := providerStatus{Name: string(b), Active: string(b) == s.cfg.Provider}
		if p, err := providers.New(b, s.cfg.Model, s.cfg.MaxRetries); err == nil {
			ps.Configured = p.Configured()
		}
		statuses = append(statuses, ps)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"providers": statuses})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Filename == "" || req.Content == "" {
		s.writeError(w, http.StatusBadRequest, "filename and content are required")
		return
	}

	f, err := ingest.New(req.Filename, []byte(req.Content), s.cfg.Server.MaxFileBytes)
	if err != nil {
		if ingest.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.Language != "" {
		f.Language = req.Language
	}

	report, err := s.engine.Run(r.Context(), f)
	if err != nil {
		s.saveFailed(f, err)
		switch {
		case providers.IsConfigError(err):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		case providers.IsProviderError(err):
			s.writeError(w, http.StatusBadGateway, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	now := time.Now().UTC()
	rec := storage.Record{
		Report:      report,
		Status:      storage.StatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := s.store.Save(rec); err != nil {
		s.log.Error("saving report failed", "reportID", report.ReportID, "error", err)
	}

	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	records, err := s.store.List(limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.Count()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.Record{}
	}
	s.writeJSON(w, http.StatusOK, listResponse{
		Reports: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "reportId": id})
}

// saveFailed records a failed run so the report history reflects it.
func (s *Server) saveFailed(f ingest.File, runErr error) {
	now := time.Now().UTC()
	rec := storage.Record{
		Report: analysis.Report{
			ReportID: uuid.NewString(),
			Filename: f.Name,
			Language: f.Language,
			FileSize: f.Size,
		},
		Status:    storage.StatusFailed,
		Error:     runErr.Error(),
		CreatedAt: now,
	}
	if err := s.store.Save(rec); err != nil {
		s.log.Error("saving failed record", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
