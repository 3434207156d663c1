package fallback

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

// stubAdapter is a scripted adapter for chain tests.
type stubAdapter struct {
	name   string
	record *domain.PaperRecord
	err    error
	calls  int
}

func (s *stubAdapter) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{Publisher: domain.PublisherIEEE, Name: s.name}
}

func (s *stubAdapter) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(s.name, venue, year, "stub")
}

func (s *stubAdapter) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func TestChain_Resolve(t *testing.T) {
	logger := zerolog.Nop()
	draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/document/123456"}

	t.Run("first strategy wins when complete", func(t *testing.T) {
		full := &domain.PaperRecord{
			Title:    "Paper A",
			Authors:  []string{"Jane Doe"},
			Abstract: "Full abstract.",
		}
		first := &stubAdapter{name: "api", record: full}
		second := &stubAdapter{name: "scrape", record: full}

		chain := NewChain(domain.PublisherIEEE, logger, first, second)
		record, err := chain.Resolve(context.Background(), draft)

		require.NoError(t, err)
		assert.Equal(t, "Paper A", record.Title)
		assert.Equal(t, 1, first.calls)
		assert.Zero(t, second.calls, "complete result must not fall through")
	})

	t.Run("advances past a failing strategy", func(t *testing.T) {
		failing := &stubAdapter{name: "api", err: domain.NewAuthError("api", 401, "bad key")}
		working := &stubAdapter{name: "scrape", record: &domain.PaperRecord{
			Title:    "Paper A",
			Authors:  []string{"Jane Doe"},
			Abstract: "Full abstract.",
		}}

		chain := NewChain(domain.PublisherIEEE, logger, failing, working)
		record, err := chain.Resolve(context.Background(), draft)

		require.NoError(t, err)
		assert.Equal(t, "Paper A", record.Title)
		assert.Equal(t, 1, failing.calls)
		assert.Equal(t, 1, working.calls)
	})

	t.Run("merges partial results additively", func(t *testing.T) {
		partial := &stubAdapter{name: "api", record: &domain.PaperRecord{
			Title:   "Paper A",
			Authors: []string{"Jane Doe"},
		}}
		filler := &stubAdapter{name: "scrape", record: &domain.PaperRecord{
			Title:    "Paper A (retitled)",
			Abstract: "Recovered abstract.",
		}}

		chain := NewChain(domain.PublisherIEEE, logger, partial, filler)
		record, err := chain.Resolve(context.Background(), draft)

		require.NoError(t, err)
		assert.Equal(t, "Paper A", record.Title, "earlier fields are never overwritten")
		assert.Equal(t, []string{"Jane Doe"}, record.Authors)
		assert.Equal(t, "Recovered abstract.", record.Abstract)
	})

	t.Run("partial result beats the last error", func(t *testing.T) {
		partial := &stubAdapter{name: "api", record: &domain.PaperRecord{Title: "Paper A"}}
		failing := &stubAdapter{name: "scrape", err: domain.NewNetworkError("scrape", 500, nil)}

		chain := NewChain(domain.PublisherIEEE, logger, partial, failing)
		record, err := chain.Resolve(context.Background(), draft)

		require.NoError(t, err)
		assert.Equal(t, "Paper A", record.Title)
	})

	t.Run("returns the last error when everything fails", func(t *testing.T) {
		first := &stubAdapter{name: "api", err: domain.NewRateLimitError("api", 0)}
		second := &stubAdapter{name: "scrape", err: domain.NewNotFoundError("scrape", "123456")}

		chain := NewChain(domain.PublisherIEEE, logger, first, second)
		_, err := chain.Resolve(context.Background(), draft)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		failing := &stubAdapter{name: "api", err: ctx.Err()}
		unreached := &stubAdapter{name: "scrape", record: &domain.PaperRecord{Title: "Paper A"}}

		chain := NewChain(domain.PublisherIEEE, logger, failing, unreached)
		_, err := chain.Resolve(ctx, draft)

		require.Error(t, err)
		assert.Zero(t, unreached.calls)
	})
}

func TestChain_Strategies(t *testing.T) {
	chain := NewChain(domain.PublisherIEEE, zerolog.Nop(),
		&stubAdapter{name: "api"}, &stubAdapter{name: "scrape"})

	assert.Equal(t, []string{"api", "scrape"}, chain.Strategies())
}
