package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdaehl/PaperStream/internal/dedup"
	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/export"
	"github.com/mdaehl/PaperStream/internal/observability"
	"github.com/mdaehl/PaperStream/internal/sources"
)

var proceedingsCmd = &cobra.Command{
	Use:   "proceedings",
	Short: "Retrieve all papers of one venue edition",
	Long: `Proceedings enumerates every paper of a venue edition (e.g. CVPR 2023)
through the source covering that venue, optionally resolves per-paper
details, deduplicates the result and writes it to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		venue, _ := cmd.Flags().GetString("venue")
		year, _ := cmd.Flags().GetInt("year")
		details, _ := cmd.Flags().GetBool("details")
		format := cfg.Output.Format
		if override, _ := cmd.Flags().GetString("format"); override != "" {
			format = override
		}
		outDir := cfg.Output.Dir
		if override, _ := cmd.Flags().GetString("out"); override != "" {
			outDir = override
		}

		registry := newRegistry(cfg)
		adapter := registry.ForVenue(venue)
		if adapter == nil {
			return fmt.Errorf("no source can enumerate venue %q (known venues: %s)",
				venue, strings.Join(registry.Venues(), ", "))
		}

		log := observability.WithVenueContext(logger, venue, year)
		log.Info().Str("source", adapter.Descriptor().Name).Msg("enumerating proceedings")

		enum, err := adapter.Enumerate(ctx, venue, year)
		if err != nil {
			return err
		}
		records, err := sources.Collect(ctx, enum)
		if err != nil {
			if len(records) == 0 || cfg.Strict {
				return err
			}
			log.Warn().Err(err).Int("records", len(records)).
				Msg("enumeration ended early, keeping partial results")
		}

		if details {
			resolveDetails(cmd, adapter, records)
		}

		ptrs := make([]*domain.PaperRecord, len(records))
		for i := range records {
			ptrs[i] = &records[i]
		}
		deduped := dedup.DedupeRecords(ptrs)

		path, err := export.WriteFile(outDir, export.Filename(venue, year, format), format, deduped)
		if err != nil {
			return err
		}
		log.Info().Int("records", len(deduped)).Str("path", path).Msg("proceedings written")
		return nil
	},
}

// resolveDetails fetches per-paper details in place. Individual failures
// leave the draft record as enumerated.
func resolveDetails(cmd *cobra.Command, adapter sources.Adapter, records []domain.PaperRecord) {
	ctx := cmd.Context()
	for i := range records {
		if ctx.Err() != nil {
			return
		}
		detailed, err := adapter.FetchDetail(ctx, &records[i])
		if err != nil {
			logger.Warn().Err(err).Str("url", records[i].URL).Msg("detail fetch failed")
			continue
		}
		records[i].Merge(detailed)
	}
}

func init() {
	proceedingsCmd.Flags().String("venue", "", "venue tag (e.g. CVPR, NeurIPS, ICLR)")
	proceedingsCmd.Flags().Int("year", 0, "edition year")
	proceedingsCmd.Flags().Bool("details", true, "resolve per-paper details (authors, abstract)")
	proceedingsCmd.Flags().String("format", "", "output format (json, csv, atom); overrides config")
	proceedingsCmd.Flags().String("out", "", "output directory; overrides config")
	_ = proceedingsCmd.MarkFlagRequired("venue")
	_ = proceedingsCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(proceedingsCmd)
}
