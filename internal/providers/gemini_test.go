package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/chunk"
)

func testGemini(url string, client *http.Client) *Gemini {
	return &Gemini{
		apiKey:     "test-key",
		model:      "gemini-1.5-flash",
		baseURL:    url,
		client:     client,
		maxRetries: 3,
		sleep:      nopSleep,
		parser:     analysis.NewParser(),
	}
}

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "key=test-key") {
			t.Error("Missing api key in query string")
		}
		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{
					Content:      geminiContent{Parts: []geminiPart{{Text: "hel"}, {Text: "lo"}}},
					FinishReason: "STOP",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := testGemini(server.URL, server.Client())

	raw, err := g.Generate(context.Background(), "test")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if raw != "hello" {
		t.Errorf("Generate = %q, want %q", raw, "hello")
	}
}

func TestGemini_SafetyBlockedReturnsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{FinishReason: "SAFETY"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := testGemini(server.URL, server.Client())

	result, err := g.Analyze(context.Background(), chunk.Chunk{Content: "x = 1", StartLine: 1, EndLine: 1}, AnalysisContext{Language: "python"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if !strings.Contains(result.Summary, "Code analysis completed") {
		t.Errorf("Summary = %q, want fallback summary", result.Summary)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("Issues = %d, want 1", len(result.Issues))
	}
	if result.Issues[0].Type != analysis.IssueStyle || result.Issues[0].Severity != analysis.SeverityLow {
		t.Errorf("fallback issue = %s/%s, want style/low", result.Issues[0].Type, result.Issues[0].Severity)
	}
	if len(result.Recommendations) != 1 {
		t.Fatalf("Recommendations = %d, want 1", len(result.Recommendations))
	}
}

func TestGemini_EmptyResponseReturnsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer server.Close()

	g := testGemini(server.URL, server.Client())

	raw, err := g.Generate(context.Background(), "test")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if raw != fallbackAnalysisBody {
		t.Errorf("Generate = %q, want fallback body", raw)
	}
}

func TestNewGemini_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := NewGemini("gemini-1.5-flash", 0)
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}
