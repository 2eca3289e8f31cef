package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/config"
	"invoicer/internal/logger"
)

var version = "1.0.0"

// DefaultDocumentPath is the working invoice file used when --doc is not given.
const DefaultDocumentPath = "invoice.json"

var (
	appConfig    *config.Config
	documentPath string
)

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - edit, print and export invoices",
	Long: `Invoicer keeps one working invoice in a JSON file and edits it with
small commands: set header fields, add and update line items, record
payments. The invoice can be previewed, printed, downloaded as an A4 PDF,
saved to a document store and written to a register spreadsheet.

Start with 'invoicer new', then use 'invoicer edit' and 'invoicer totals'.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the loaded configuration. cfg may be
// nil when configuration failed to load; commands that need it reload it
// and report the error.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the configuration given to Execute, loading it again
// if that failed, so the caller sees the actual configuration error.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	appConfig = cfg
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&documentPath, "doc", "d", DefaultDocumentPath, "Working invoice file")
}
