package fallback

import (
	"github.com/rs/zerolog"

	"github.com/mdaehl/PaperStream/internal/config"
	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
	"github.com/mdaehl/PaperStream/internal/sources/arxiv"
	"github.com/mdaehl/PaperStream/internal/sources/elsevier"
	"github.com/mdaehl/PaperStream/internal/sources/ieee"
	"github.com/mdaehl/PaperStream/internal/sources/springer"
)

// Build assembles the completion chains for every enabled publisher a
// feed entry can be classified to. Key-gated API strategies join a
// chain only when their key is configured; a missing key silently
// leaves the chain on its scrape strategy. The request budget applies
// to API strategies, scraping is only paced.
func Build(cfg *config.Config, logger zerolog.Logger) map[domain.Publisher]*Chain {
	chains := make(map[domain.Publisher]*Chain)

	if src := cfg.Sources.ArXiv; src.Enabled {
		chains[domain.PublisherArXiv] = NewChain(domain.PublisherArXiv, logger,
			arxiv.New(arxiv.Config{
				BaseURL:       src.BaseURL,
				Timeout:       src.Timeout,
				MinInterval:   src.MinInterval,
				RequestBudget: src.RequestBudget,
			}))
	}

	if src := cfg.Sources.IEEE; src.Enabled {
		var adapters []sources.Adapter
		if src.APIKey != "" {
			adapters = append(adapters, ieee.NewAPI(ieee.APIConfig{
				BaseURL:       src.BaseURL,
				APIKey:        src.APIKey,
				Timeout:       src.Timeout,
				MinInterval:   src.MinInterval,
				RequestBudget: src.RequestBudget,
			}))
		}
		adapters = append(adapters, ieee.NewScraper(ieee.ScrapeConfig{
			Timeout:     src.Timeout,
			MinInterval: src.MinInterval,
		}))
		chains[domain.PublisherIEEE] = NewChain(domain.PublisherIEEE, logger, adapters...)
	}

	if src := cfg.Sources.Elsevier; src.Enabled {
		var adapters []sources.Adapter
		if src.APIKey != "" {
			adapters = append(adapters, elsevier.NewAPI(elsevier.APIConfig{
				BaseURL:       src.BaseURL,
				APIKey:        src.APIKey,
				Timeout:       src.Timeout,
				MinInterval:   src.MinInterval,
				RequestBudget: src.RequestBudget,
			}))
		}
		adapters = append(adapters, elsevier.NewScraper(elsevier.ScrapeConfig{
			Timeout:     src.Timeout,
			MinInterval: src.MinInterval,
		}))
		chains[domain.PublisherElsevier] = NewChain(domain.PublisherElsevier, logger, adapters...)
	}

	if src := cfg.Sources.Springer; src.Enabled {
		var adapters []sources.Adapter
		if src.APIKey != "" {
			adapters = append(adapters, springer.NewAPI(springer.APIConfig{
				BaseURL:       src.BaseURL,
				APIKey:        src.APIKey,
				Timeout:       src.Timeout,
				MinInterval:   src.MinInterval,
				RequestBudget: src.RequestBudget,
			}))
		}
		adapters = append(adapters, springer.NewScraper(springer.ScrapeConfig{
			Timeout:     src.Timeout,
			MinInterval: src.MinInterval,
		}))
		chains[domain.PublisherSpringer] = NewChain(domain.PublisherSpringer, logger, adapters...)
	}

	if src := cfg.Sources.Nature; src.Enabled {
		var adapters []sources.Adapter
		if src.APIKey != "" {
			adapters = append(adapters, springer.NewNatureAPI(springer.APIConfig{
				BaseURL:       src.BaseURL,
				APIKey:        src.APIKey,
				Timeout:       src.Timeout,
				MinInterval:   src.MinInterval,
				RequestBudget: src.RequestBudget,
			}))
		}
		adapters = append(adapters, springer.NewNatureScraper(springer.ScrapeConfig{
			Timeout:     src.Timeout,
			MinInterval: src.MinInterval,
		}))
		chains[domain.PublisherNature] = NewChain(domain.PublisherNature, logger, adapters...)
	}

	return chains
}
