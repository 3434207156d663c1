package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdaehl/PaperStream/internal/dedup"
	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/export"
	"github.com/mdaehl/PaperStream/internal/fallback"
	"github.com/mdaehl/PaperStream/internal/feed"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Complete abbreviated alert feed entries",
	Long: `Feed loads alert feed files (e.g. saved Scholar alerts), classifies every
entry by its link, resolves title, authors and abstract through the
publisher's fallback chain, deduplicates and writes the completed records
to the output directory.

Entries whose link matches no known publisher are kept unresolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dir := cfg.Feeds.Dir
		if override, _ := cmd.Flags().GetString("dir"); override != "" {
			dir = override
		}
		format := cfg.Output.Format
		if override, _ := cmd.Flags().GetString("format"); override != "" {
			format = override
		}
		outDir := cfg.Output.Dir
		if override, _ := cmd.Flags().GetString("out"); override != "" {
			outDir = override
		}

		entries, err := feed.LoadDir(dir)
		if err != nil {
			return err
		}
		entries = dedup.DedupeEntries(entries)
		logger.Info().Int("entries", len(entries)).Str("dir", dir).Msg("loaded alert entries")

		chains := fallback.Build(cfg, logger)
		completer := feed.NewCompleter(chains, logger, cfg.Strict)
		if err := completer.CompleteAll(ctx, entries); err != nil {
			return err
		}

		counts := make(map[domain.CompletionStatus]int)
		records := make([]*domain.PaperRecord, 0, len(entries))
		for _, entry := range entries {
			counts[entry.Status]++
			rec := entry.Record()
			records = append(records, &rec)
		}
		records = dedup.DedupeRecords(records)

		name := fmt.Sprintf("feed.%s", format)
		path, err := export.WriteFile(outDir, name, format, records)
		if err != nil {
			return err
		}
		logger.Info().
			Int("completed", counts[domain.StatusFullyCompleted]).
			Int("partial", counts[domain.StatusPartiallyCompleted]).
			Int("failed", counts[domain.StatusFailed]).
			Int("unresolved", counts[domain.StatusUnresolved]).
			Str("path", path).
			Msg("feed written")
		return nil
	},
}

func init() {
	feedCmd.Flags().String("dir", "", "directory of alert feed files; overrides config")
	feedCmd.Flags().String("format", "", "output format (json, csv, atom); overrides config")
	feedCmd.Flags().String("out", "", "output directory; overrides config")

	rootCmd.AddCommand(feedCmd)
}
