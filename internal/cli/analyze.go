package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelar/critique/internal/analysis"
	"github.com/avelar/critique/internal/cache"
	"github.com/avelar/critique/internal/chunk"
	"github.com/avelar/critique/internal/config"
	"github.com/avelar/critique/internal/ingest"
	"github.com/avelar/critique/internal/output"
	"github.com/avelar/critique/internal/pipeline"
	"github.com/avelar/critique/internal/providers"
	"github.com/avelar/critique/internal/storage"
)

var (
	flagLanguage   string
	flagProvider   string
	flagModel      string
	flagFormat     string
	flagOut        string
	flagFocusAreas string
	flagChunkSize  int
	flagNoRedact   bool
	flagNoCache    bool
	flagSave       bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Language override (default: detect from extension)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, gemini)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFocusAreas, "focus", "", "Focus areas (comma-separated)")
	cmd.Flags().IntVar(&flagChunkSize, "max-chunk-tokens", 0, "Maximum tokens per chunk")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the analysis cache")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Persist the report to the report store")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFocusAreas != "" {
		m["focusAreas"] = flagFocusAreas
	}
	if flagChunkSize > 0 {
		m["maxChunkTokens"] = fmt.Sprintf("%d", flagChunkSize)
	}
	return m
}

// buildEngine assembles the analysis pipeline from the effective config.
func buildEngine(cfg config.Config) (*pipeline.Engine, error) {
	provider, err := providers.New(providers.Backend(cfg.Provider), cfg.Model, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	cacheEnabled := cfg.Cache.Enabled && !flagNoCache
	c, err := cache.New(cacheEnabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	splitter := chunk.NewSplitter()
	if cfg.MaxChunkTokens > 0 {
		splitter.MaxTokens = cfg.MaxChunkTokens
	}
	splitter.Estimate = provider.EstimateTokens

	return &pipeline.Engine{
		Provider:      provider,
		Model:         cfg.Model,
		Splitter:      splitter,
		Aggregator:    analysis.NewAggregator(),
		Cache:         c,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		FocusAreas:    cfg.FocusAreas,
	}, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}
		runAnalyze(args[0], cfg)
		return nil
	},
}

func runAnalyze(path string, cfg config.Config) {
	f, err := ingest.Load(path, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if flagLanguage != "" {
		f.Language = strings.ToLower(flagLanguage)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsConfigError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	report, err := engine.Run(context.Background(), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsConfigError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	if flagSave {
		store, err := storage.New(cfg.Storage.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening report store: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		now := time.Now().UTC()
		rec := storage.Record{
			Report:      report,
			Status:      storage.StatusCompleted,
			CreatedAt:   now,
			CompletedAt: &now,
		}
		if err := store.Save(rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving report: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		fmt.Fprintf(os.Stderr, "Report saved: %s\n", report.ReportID)
	}

	if err := output.WriteReport(&report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}
