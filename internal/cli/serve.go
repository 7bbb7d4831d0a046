package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelar/critique/internal/config"
	"github.com/avelar/critique/internal/providers"
	"github.com/avelar/critique/internal/server"
	"github.com/avelar/critique/internal/storage"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagAddr != "" {
			overrides["addr"] = flagAddr
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		engine, err := buildEngine(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if providers.IsConfigError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
		engine.Log = log

		store, err := storage.New(cfg.Storage.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		srv := server.New(cfg, engine, store, log)
		log.Info("starting server", "addr", cfg.Server.Addr, "provider", cfg.Provider, "model", cfg.Model)
		if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
			log.Error("server stopped", "error", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addAnalyzeFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :8080)")
}
