package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelar/critique/internal/config"
	"github.com/avelar/critique/internal/output"
	"github.com/avelar/critique/internal/storage"
)

var (
	flagListLimit  int
	flagListOffset int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage stored analysis reports",
}

func openStore() (*storage.Store, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Storage.Dir)
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		records, err := store.List(flagListLimit, flagListOffset)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stdout, "No reports stored.")
			return nil
		}
		for _, rec := range records {
			fmt.Fprintf(os.Stdout, "%s  %-10s  %-12s  issues=%d  %s\n",
				rec.Report.ReportID,
				rec.Status,
				rec.Report.Language,
				rec.Report.TotalIssues,
				rec.Report.Filename,
			)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		rec, err := store.Get(args[0])
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Report %s not found\n", args[0])
				exitCode = ExitRuntimeError
				return nil
			}
			return err
		}
		if rec.Status == storage.StatusFailed {
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}
		format := flagFormat
		if format == "" {
			format = "text"
		}
		return output.WriteReport(&rec.Report, format, "")
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Report %s not found\n", args[0])
				exitCode = ExitRuntimeError
				return nil
			}
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)

	reportsListCmd.Flags().IntVar(&flagListLimit, "limit", 50, "Maximum reports to list")
	reportsListCmd.Flags().IntVar(&flagListOffset, "offset", 0, "Reports to skip")
	reportsShowCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
}
