package feed

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mdaehl/PaperStream/internal/dedup"
	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/fallback"
	"github.com/mdaehl/PaperStream/internal/observability"
)

// publisherSignatures maps registrable link domains to the publisher
// family that can resolve them.
var publisherSignatures = map[string]domain.Publisher{
	"arxiv.org":         domain.PublisherArXiv,
	"ieee.org":          domain.PublisherIEEE,
	"sciencedirect.com": domain.PublisherElsevier,
	"elsevier.com":      domain.PublisherElsevier,
	"springer.com":      domain.PublisherSpringer,
	"nature.com":        domain.PublisherNature,
}

// Classify maps an entry link to the publisher family serving it.
// Links matching no known signature return PublisherUnknown.
func Classify(link string) domain.Publisher {
	return publisherSignatures[SourceDomain(link)]
}

// Completer resolves abbreviated feed entries through per-publisher
// fallback chains.
type Completer struct {
	chains map[domain.Publisher]*fallback.Chain
	logger zerolog.Logger
	strict bool
}

// NewCompleter creates a completer over the given chains. In strict
// mode the first resolution failure aborts the run; otherwise failures
// are logged and the entry is marked failed.
func NewCompleter(chains map[domain.Publisher]*fallback.Chain, logger zerolog.Logger, strict bool) *Completer {
	return &Completer{
		chains: chains,
		logger: logger,
		strict: strict,
	}
}

// Complete resolves a single entry in place. Entries whose link matches
// no configured publisher keep their unresolved status; that is not an
// error.
func (c *Completer) Complete(ctx context.Context, entry *domain.FeedEntry) error {
	logger := observability.WithEntryContext(c.logger, entry.RawTitle, entry.RawLink)

	publisher := Classify(entry.RawLink)
	if publisher == domain.PublisherUnknown {
		logger.Debug().Str("domain", entry.SourceDomain).Msg("no publisher signature, leaving unresolved")
		return nil
	}
	chain, ok := c.chains[publisher]
	if !ok {
		logger.Debug().Str("publisher", string(publisher)).Msg("publisher not configured, leaving unresolved")
		return nil
	}

	draft := entry.Record()
	record, err := chain.Resolve(ctx, &draft)
	if err != nil {
		entry.Status = domain.StatusFailed
		if ctx.Err() != nil || c.strict {
			return err
		}
		logger.Warn().Err(err).Msg("resolution failed")
		return nil
	}

	if !titleMatches(entry.RawTitle, record.Title) {
		entry.Status = domain.StatusFailed
		logger.Warn().
			Str("resolved_title", record.Title).
			Msg("resolved title does not match the alert, skipping")
		return nil
	}

	entry.Apply(record)
	if entry.Completed() {
		entry.Status = domain.StatusFullyCompleted
	} else {
		entry.Status = domain.StatusPartiallyCompleted
	}
	return nil
}

// CompleteAll resolves every entry in order. In strict mode the first
// failure aborts; otherwise all entries are attempted.
func (c *Completer) CompleteAll(ctx context.Context, entries []*domain.FeedEntry) error {
	for _, entry := range entries {
		if err := c.Complete(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// titleMatches validates a resolved title against the alert title.
// Alert titles are often truncated, so containment of the normalized
// forms counts as a match. An empty side never blocks resolution.
func titleMatches(rawTitle, resolvedTitle string) bool {
	raw := dedup.NormalizeTitle(rawTitle)
	resolved := dedup.NormalizeTitle(resolvedTitle)
	if raw == "" || resolved == "" {
		return true
	}
	return strings.Contains(resolved, raw) || strings.Contains(raw, resolved)
}
