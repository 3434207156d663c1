package fallback

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/config"
	"github.com/mdaehl/PaperStream/internal/domain"
)

func allEnabled() *config.Config {
	cfg := &config.Config{}
	for _, src := range []*config.SourceConfig{
		&cfg.Sources.ArXiv, &cfg.Sources.IEEE, &cfg.Sources.Elsevier,
		&cfg.Sources.Springer, &cfg.Sources.Nature,
	} {
		src.Enabled = true
	}
	return cfg
}

func TestBuild(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("without keys every chain is scrape only", func(t *testing.T) {
		chains := Build(allEnabled(), logger)

		require.Len(t, chains, 5)
		assert.Equal(t, []string{"arxiv"}, chains[domain.PublisherArXiv].Strategies())
		assert.Equal(t, []string{"ieee-scrape"}, chains[domain.PublisherIEEE].Strategies())
		assert.Equal(t, []string{"elsevier-scrape"}, chains[domain.PublisherElsevier].Strategies())
		assert.Equal(t, []string{"springer-scrape"}, chains[domain.PublisherSpringer].Strategies())
		assert.Equal(t, []string{"nature-scrape"}, chains[domain.PublisherNature].Strategies())
	})

	t.Run("a key prepends the API strategy", func(t *testing.T) {
		cfg := allEnabled()
		cfg.Sources.IEEE.APIKey = "ieee-key"
		cfg.Sources.Springer.APIKey = "spr-key"

		chains := Build(cfg, logger)

		assert.Equal(t, []string{"ieee-api", "ieee-scrape"}, chains[domain.PublisherIEEE].Strategies())
		assert.Equal(t, []string{"springer-api", "springer-scrape"}, chains[domain.PublisherSpringer].Strategies())
		assert.Equal(t, []string{"elsevier-scrape"}, chains[domain.PublisherElsevier].Strategies())
	})

	t.Run("disabled sources get no chain", func(t *testing.T) {
		cfg := allEnabled()
		cfg.Sources.Elsevier.Enabled = false

		chains := Build(cfg, logger)

		_, ok := chains[domain.PublisherElsevier]
		assert.False(t, ok)
		assert.Len(t, chains, 4)
	})
}
