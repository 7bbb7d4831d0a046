// Package pipeline orchestrates a full file analysis: secret redaction,
// chunking, per-chunk provider calls with caching, and aggregation into a
// single report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/cache"
	"github.com/avelar/critique/internal/chunk"
	"github.com/avelar/critique/internal/ingest"
	"github.com/avelar/critique/internal/providers"
	"github.com/avelar/critique/internal/redact"
)

// Engine runs the analysis pipeline. All collaborators are injected; zero
// values fall back to sensible defaults in Run.
type Engine struct {
	Provider      providers.Provider
	Model         string
	Splitter      *chunk.Splitter
	Aggregator    *analysis.Aggregator
	Cache         *cache.Cache
	RedactSecrets bool
	FocusAreas    []string
	Log           *slog.Logger
}

// Run analyzes one file and returns the aggregated report. A provider
// failure on any chunk aborts the run.
func (e *Engine) Run(ctx context.Context, f ingest.File) (analysis.Report, error) {
	log := e.logger().With("filename", f.Name, "language", f.Language)

	content := f.Content
	if e.RedactSecrets {
		redacted, findings := redact.ScanAndRedact(content)
		if len(findings) > 0 {
			log.Info("redacted secrets before analysis", "findings", len(findings))
		}
		content = redacted
	}

	splitter := e.Splitter
	if splitter == nil {
		splitter = chunk.NewSplitter()
	}
	chunks := splitter.Split(content, f.Language)
	log.Info("starting analysis", "chunks", len(chunks))

	actx := providers.AnalysisContext{Language: f.Language, FocusAreas: e.FocusAreas}

	results := make([]analysis.Result, 0, len(chunks))
	for i, c := range chunks {
		result, err := e.analyzeChunk(ctx, c, actx)
		if err != nil {
			return analysis.Report{}, fmt.Errorf("analyzing chunk %d-%d: %w", c.StartLine, c.EndLine, err)
		}
		log.Debug("chunk analyzed", "chunk", i+1, "issues", len(result.Issues))
		results = append(results, result)
	}

	agg := e.Aggregator
	if agg == nil {
		agg = analysis.NewAggregator()
	}
	report := agg.Aggregate(results, f.Name, f.Language, f.Size)
	report.ChunksAnalyzed = len(chunks)
	log.Info("analysis complete", "reportID", report.ReportID, "issues", report.TotalIssues)
	return report, nil
}

func (e *Engine) analyzeChunk(ctx context.Context, c chunk.Chunk, actx providers.AnalysisContext) (analysis.Result, error) {
	key := ""
	if e.Cache != nil && e.Cache.Enabled() {
		key = cache.BuildKey(e.Provider.Name(), e.Model, c.Language, c.Content)
		if cached, ok := e.Cache.Get(key); ok {
			return cached, nil
		}
	}

	result, err := e.Provider.Analyze(ctx, c, actx)
	if err != nil {
		return analysis.Result{}, err
	}

	if key != "" {
		if err := e.Cache.Put(key, result); err != nil {
			e.logger().Warn("cache write failed", "error", err)
		}
	}
	return result, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}
