// Package main is the entry point for the paperstream CLI.
//
// paperstream retrieves paper metadata from publisher sites and APIs.
// The proceedings subcommand enumerates whole venue editions, the feed
// subcommand completes abbreviated alert feed entries.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mdaehl/PaperStream/internal/config"
	"github.com/mdaehl/PaperStream/internal/observability"
)

// cfg and logger are initialized once before any subcommand runs.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paperstream",
	Short: "Retrieve and complete academic paper metadata",
	Long: `paperstream collects structured paper metadata from heterogeneous
publisher sources. Venue proceedings (CVPR, NeurIPS, ICLR, ICRA, ...) are
enumerated completely; abbreviated alert feed entries are completed through
per-publisher resolution chains that fall back from key-gated APIs to
scraping.

API keys are read exclusively from environment variables
(PAPERSTREAM_SOURCES_<NAME>_API_KEY); without a key a source simply stays
on its scrape strategy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is a convenience for local runs; absence is fine.
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if strict, _ := cmd.Flags().GetBool("strict"); strict {
			loaded.Strict = true
		}
		cfg = loaded
		logger = observability.NewLogger(cfg.Logging.Observability())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("strict", false, "treat resolution failures as hard errors")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
