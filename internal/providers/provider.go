package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/chunk"
)

// Backend identifies a concrete LLM backend.
type Backend string

const (
	BackendOpenAI Backend = "openai"
	BackendGemini Backend = "gemini"
)

// Backends lists the supported backends.
func Backends() []Backend {
	return []Backend{BackendOpenAI, BackendGemini}
}

// AnalysisContext carries per-request analysis settings.
type AnalysisContext struct {
	Language   string
	FocusAreas []string
}

// Provider is the capability set all backends implement.
type Provider interface {
	// Name returns the backend identifier.
	Name() string
	// Configured reports whether credentials are present.
	Configured() bool
	// EstimateTokens estimates the token count of text for this backend.
	EstimateTokens(text string) int
	// Generate performs one prompt round trip and returns the raw text.
	Generate(ctx context.Context, prompt string) (string, error)
	// Analyze reviews a single chunk with retry and returns the
	// normalized result.
	Analyze(ctx context.Context, c chunk.Chunk, actx AnalysisContext) (analysis.Result, error)
}

// New creates a provider for the given backend. maxRetries bounds the
// Analyze retry loop; values <= 0 fall back to the default. A ConfigError
// is returned when the backend's credentials are missing.
func New(backend Backend, model string, maxRetries int) (Provider, error) {
	switch backend {
	case BackendOpenAI:
		return NewOpenAI(model, maxRetries)
	case BackendGemini:
		return NewGemini(model, maxRetries)
	default:
		return nil, fmt.Errorf("unknown provider: %s", backend)
	}
}

// ConfigError indicates a backend is missing or rejecting credentials.
// It is fatal: config errors are surfaced immediately and never retried.
type ConfigError struct {
	Provider string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s not configured: %s", e.Provider, e.Message)
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ProviderError wraps the last failure after retries are exhausted.
type ProviderError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError checks if an error is an exhausted-retry provider failure.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
