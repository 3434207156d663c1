// Package fallback resolves paper details through ordered adapter
// chains. Each publisher gets one chain: the preferred strategy first
// (usually a key-gated API), cheaper scrape strategies after it. A
// failing strategy never aborts resolution; the chain advances and
// merges whatever partial fields earlier strategies produced.
package fallback

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/observability"
	"github.com/mdaehl/PaperStream/internal/sources"
)

// Chain is an ordered list of adapters for one publisher.
type Chain struct {
	publisher domain.Publisher
	adapters  []sources.Adapter
	logger    zerolog.Logger
}

// NewChain creates a chain that tries the given adapters in order.
func NewChain(publisher domain.Publisher, logger zerolog.Logger, adapters ...sources.Adapter) *Chain {
	return &Chain{
		publisher: publisher,
		adapters:  adapters,
		logger:    logger,
	}
}

// Publisher returns the publisher tag the chain serves.
func (c *Chain) Publisher() domain.Publisher {
	return c.publisher
}

// Strategies returns the adapter names in resolution order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.adapters))
	for i, a := range c.adapters {
		names[i] = a.Descriptor().Name
	}
	return names
}

// Resolve runs the chain against a draft record. Fields produced by
// earlier strategies are kept and only the gaps are offered to later
// ones. Resolution stops early once title, authors and abstract are all
// populated.
//
// The last strategy error is returned only when no strategy produced
// anything; a partial result is returned with a nil error.
func (c *Chain) Resolve(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	merged := &domain.PaperRecord{Venue: draft.Venue, Year: draft.Year}
	var lastErr error

	for _, adapter := range c.adapters {
		desc := adapter.Descriptor()
		logger := observability.WithSourceContext(c.logger, string(c.publisher), desc.Name)

		rec, err := adapter.FetchDetail(ctx, draft)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			logger.Warn().Err(err).Str("url", draft.URL).Msg("strategy failed, advancing")
			continue
		}

		merged.Merge(rec)
		logger.Debug().Str("title", merged.Title).Msg("strategy resolved fields")

		if complete(merged) {
			break
		}
	}

	if empty(merged) {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, domain.NewNotFoundError(string(c.publisher), draft.URL)
	}
	return merged, nil
}

// complete reports whether no later strategy could add anything useful.
func complete(rec *domain.PaperRecord) bool {
	return rec.Title != "" && len(rec.Authors) > 0 && rec.Abstract != ""
}

// empty reports whether resolution produced no detail fields at all.
func empty(rec *domain.PaperRecord) bool {
	return rec.Title == "" && len(rec.Authors) == 0 && rec.Abstract == "" && rec.URL == ""
}
