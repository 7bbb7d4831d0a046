// Package providers implements the Provider capability set for each
// supported LLM backend.
//
// Supported backends: OpenAI (GPT) and Google (Gemini). Both speak plain
// HTTP to their respective APIs; a third backend only needs to implement
// the Provider interface and be added to the New switch.
//
// Analyze is the one retried operation in the system: it wraps prompt
// construction, the provider round trip, and response normalization in a
// retry loop with exponential back-off. The sleep between attempts is
// injectable so tests run retries without wall-clock delays. Missing
// credentials surface as a ConfigError at construction time and are never
// retried; exhausted retries surface as a ProviderError.
//
// Use [New] to obtain a Provider from a Backend constant and model string.
package providers
