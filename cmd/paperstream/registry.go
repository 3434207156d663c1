package main

import (
	"github.com/mdaehl/PaperStream/internal/config"
	"github.com/mdaehl/PaperStream/internal/sources"
	"github.com/mdaehl/PaperStream/internal/sources/cvf"
	"github.com/mdaehl/PaperStream/internal/sources/ecva"
	"github.com/mdaehl/PaperStream/internal/sources/ieee"
	"github.com/mdaehl/PaperStream/internal/sources/neurips"
	"github.com/mdaehl/PaperStream/internal/sources/openreview"
	"github.com/mdaehl/PaperStream/internal/sources/pmlr"
)

// newRegistry assembles the proceedings registry from the enabled
// sources. IEEE joins only when its key is configured; the Xplore
// scrape variant cannot enumerate.
func newRegistry(cfg *config.Config) *sources.Registry {
	registry := sources.NewRegistry()

	if src := cfg.Sources.CVF; src.Enabled {
		registry.Register(cvf.New(cvf.Config{
			BaseURL:       src.BaseURL,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}
	if src := cfg.Sources.ECVA; src.Enabled {
		registry.Register(ecva.New(ecva.Config{
			BaseURL:       src.BaseURL,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}
	if src := cfg.Sources.NeurIPS; src.Enabled {
		registry.Register(neurips.New(neurips.Config{
			BaseURL:       src.BaseURL,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}
	if src := cfg.Sources.PMLR; src.Enabled {
		registry.Register(pmlr.New(pmlr.Config{
			BaseURL:       src.BaseURL,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}
	if src := cfg.Sources.OpenReview; src.Enabled {
		registry.Register(openreview.New(openreview.Config{
			BaseURL:       src.BaseURL,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}
	if src := cfg.Sources.IEEE; src.Enabled && src.APIKey != "" {
		registry.Register(ieee.NewAPI(ieee.APIConfig{
			BaseURL:       src.BaseURL,
			APIKey:        src.APIKey,
			Timeout:       src.Timeout,
			MinInterval:   src.MinInterval,
			RequestBudget: src.RequestBudget,
		}))
	}

	return registry
}
