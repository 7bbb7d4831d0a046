// Critique analyzes source files with LLM providers and produces structured
// code review reports.
//
// It runs either as a one-shot CLI or as an HTTP API server. Files are
// scanned for secrets, redacted, split into token-budgeted chunks, analyzed
// chunk by chunk, and aggregated into a single deduplicated report.
//
// Usage:
//
//	critique analyze main.py              # analyze one file
//	critique analyze main.py --save       # analyze and persist the report
//	critique serve --addr :8080           # run the HTTP API
//	critique reports list                 # list stored reports
//	critique config init                  # write a default config file
//	critique cache clear                  # drop cached analyses
package main
