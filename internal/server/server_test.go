package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/chunk"
	"github.com/avelar/critique/internal/config"
	"github.com/avelar/critique/internal/pipeline"
	"github.com/avelar/critique/internal/providers"
	"github.com/avelar/critique/internal/storage"
)

type stubProvider struct {
	err error
}

func (p *stubProvider) Name() string                   { return "stub" }
func (p *stubProvider) Configured() bool               { return true }
func (p *stubProvider) EstimateTokens(text string) int { return len(text) / 4 }

func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("not used")
}

func (p *stubProvider) Analyze(ctx context.Context, c chunk.Chunk, actx providers.AnalysisContext) (analysis.Result, error) {
	if p.err != nil {
		return analysis.Result{}, p.err
	}
	return analysis.Result{
		Summary:         "Looks fine.",
		Issues:          []analysis.Issue{},
		Recommendations: []analysis.Recommendation{},
		Confidence:      0.9,
		ProcessingTime:  0.1,
	}, nil
}

func newTestServer(t *testing.T, p providers.Provider, apiKeys []string) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.APIKeys = apiKeys
	cfg.Server.RequestsPerMinute = 100

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := &pipeline.Engine{Provider: p, Log: log}
	return New(cfg, engine, store, log), store
}

func postReview(t *testing.T, handler http.Handler, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"filename": "main.py",
		"content":  "print('hi')",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/reviews", bytes.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{}, nil)
	handler := s.Router()

	req := httptest.NewRequest("GET", "/v1/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestServer_CreateReview(t *testing.T) {
	s, store := newTestServer(t, &stubProvider{}, nil)
	w := postReview(t, s.Router(), "")

	require.Equal(t, http.StatusCreated, w.Code)

	var rec storage.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, storage.StatusCompleted, rec.Status)
	assert.Equal(t, "main.py", rec.Report.Filename)
	assert.Equal(t, "python", rec.Report.Language)
	assert.NotEmpty(t, rec.Report.ReportID)

	// Persisted
	got, err := store.Get(rec.Report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, rec.Report.ReportID, got.Report.ReportID)
}

func TestServer_CreateReviewValidation(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{}, nil)
	handler := s.Router()

	body, _ := json.Marshal(map[string]string{"filename": "prog.exe", "content": "MZ"})
	req := httptest.NewRequest("POST", "/v1/reviews", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest("POST", "/v1/reviews", bytes.NewReader([]byte("{")))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ProviderFailureMapsToBadGateway(t *testing.T) {
	p := &stubProvider{err: &providers.ProviderError{Provider: "stub", Attempts: 3, Err: errors.New("down")}}
	s, store := newTestServer(t, p, nil)

	w := postReview(t, s.Router(), "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Failed run is recorded
	records, err := store.List(0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.StatusFailed, records[0].Status)
	assert.NotEmpty(t, records[0].Error)
}

func TestServer_ConfigErrorMapsToServiceUnavailable(t *testing.T) {
	p := &stubProvider{err: &providers.ConfigError{Provider: "stub", Message: "no key"}}
	s, _ := newTestServer(t, p, nil)

	w := postReview(t, s.Router(), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_APIKeyRequired(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{}, []string{"sekrit"})
	handler := s.Router()

	w := postReview(t, handler, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postReview(t, handler, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postReview(t, handler, "sekrit")
	assert.Equal(t, http.StatusCreated, w.Code)

	// Bearer form works too
	body, _ := json.Marshal(map[string]string{"filename": "main.py", "content": "x = 1"})
	req := httptest.NewRequest("POST", "/v1/reviews", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestServer_ListGetDelete(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{}, nil)
	handler := s.Router()

	created := postReview(t, handler, "")
	require.Equal(t, http.StatusCreated, created.Code)
	var rec storage.Record
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &rec))
	id := rec.Report.ReportID

	req := httptest.NewRequest("GET", "/v1/reviews", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Reports, 1)

	req = httptest.NewRequest("GET", "/v1/reviews/"+id, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("DELETE", "/v1/reviews/"+id, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/v1/reviews/"+id, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RateLimit(t *testing.T) {
	s, _ := newTestServer(t, &stubProvider{}, nil)
	s.limiter = NewLimiter(2)
	handler := s.Router()

	for i := 0; i < 2; i++ {
		w := postReview(t, handler, "")
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := postReview(t, handler, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 60)
}
