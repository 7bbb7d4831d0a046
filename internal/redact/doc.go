// Package redact removes credential-like values from source text before it
// is sent to any LLM provider.
//
// Detection uses an ordered table of regex heuristics covering common secret
// shapes: API and secret keys, passwords, bearer and access tokens, JWTs,
// AWS access key IDs and secret access keys, GitHub tokens, private key
// blocks, database connection strings, email addresses, and IP addresses.
// Each category carries a fixed confidence weight and its own placeholder
// token.
//
// Matches on lines that look like examples or placeholders (the word "test",
// "example", long runs of repeated characters, known dummy literals) are
// suppressed to cut down on false positives.
package redact
