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

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// openaiTemperature is kept low for consistent JSON output.
const openaiTemperature = 0.1

// OpenAI implements the Provider interface for OpenAI's chat completions API.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	maxRetries int
	sleep      sleepFunc
	parser     *analysis.Parser
}

// NewOpenAI creates a new OpenAI provider. maxRetries <= 0 applies the
// default retry bound.
func NewOpenAI(model string, maxRetries int) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &ConfigError{Provider: "openai", Message: "OPENAI_API_KEY environment variable is not set"}
	}
	baseURL := os.Getenv("CRITIQUE_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &OpenAI{
		apiKey:     key,
		model:      model,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 120 * time.Second},
		maxRetries: maxRetries,
		parser:     analysis.NewParser(),
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Configured() bool { return o.apiKey != "" }

// EstimateTokens uses the cl100k_base encoding, falling back to the
// character heuristic when the encoding cannot be loaded.
func (o *OpenAI) EstimateTokens(text string) int { return countTokens(text) }

// Generate performs a single chat-completion round trip.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	temp := openaiTemperature
	body := openaiRequest{
		Model:       o.model,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens:   4096,
		Temperature: &temp,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
		return "", &ConfigError{Provider: o.Name(), Message: string(respBody)}
	}
	if httpResp.StatusCode != 200 {
		return "", fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// Analyze reviews one chunk, retrying transient failures with exponential
// back-off. Processing time covers prompt dispatch to full response.
func (o *OpenAI) Analyze(ctx context.Context, c chunk.Chunk, actx AnalysisContext) (analysis.Result, error) {
	prompt := buildAnalysisPrompt(c, actx, openaiClosing)

	var result analysis.Result
	err := retryWithBackoff(ctx, o.maxRetries, o.sleep, func() error {
		start := time.Now()
		raw, err := o.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		result = o.parser.Parse(raw, time.Since(start).Seconds())
		return nil
	})
	if err != nil {
		if IsConfigError(err) || ctx.Err() != nil {
			return analysis.Result{}, err
		}
		return analysis.Result{}, &ProviderError{Provider: o.Name(), Attempts: o.maxRetries, Err: err}
	}
	return result, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
