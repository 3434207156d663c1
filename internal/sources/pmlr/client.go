// Package pmlr implements the source adapter for the Proceedings of
// Machine Learning Research site (proceedings.mlr.press). Editions are
// published as numbered volumes, so each supported venue carries a
// year-to-volume mapping.
package pmlr

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultBaseURL is the PMLR site root.
	DefaultBaseURL = "https://proceedings.mlr.press"

	// DefaultMinInterval is the default spacing between page fetches.
	DefaultMinInterval = 500 * time.Millisecond

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	sourceName = "pmlr"
)

// volumes maps venue and year to the PMLR volume number.
var volumes = map[string]map[int]int{
	"ICML": {
		2020: 119,
		2021: 139,
		2022: 162,
		2023: 202,
		2024: 235,
	},
	"AISTATS": {
		2020: 108,
		2021: 130,
		2022: 151,
		2023: 206,
		2024: 238,
	},
	"CORL": {
		2020: 155,
		2021: 164,
		2022: 205,
		2023: 229,
	},
}

// Config holds configuration for the PMLR adapter.
type Config struct {
	// BaseURL is the site root.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between page fetches.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
	RequestBudget int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultMinInterval
	}
}

// Client implements the sources.Adapter interface for PMLR.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new PMLR adapter with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(sourceName, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:  sourceName,
		Timeout: cfg.Timeout,
	}, throttler)

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *Client) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     domain.PublisherPMLR,
		Name:          sourceName,
		Venues:        []string{"ICML", "AISTATS", "CoRL"},
		EarliestYear:  2020,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// volumeFor resolves venue/year to a volume number.
func volumeFor(venue string, year int) (int, error) {
	byYear, ok := volumes[strings.ToUpper(venue)]
	if !ok {
		return 0, domain.NewUnsupportedVenueError(sourceName, venue, year, "")
	}
	vol, ok := byYear[year]
	if !ok {
		return 0, domain.NewUnsupportedVenueError(sourceName, venue, year, "no volume mapping for this year")
	}
	return vol, nil
}

// Enumerate lists one venue edition from its volume index page.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	vol, err := volumeFor(venue, year)
	if err != nil {
		return nil, err
	}

	done := false
	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if done {
			return nil, nil
		}
		done = true

		doc, err := c.fetch(ctx, fmt.Sprintf("%s/v%d/", c.config.BaseURL, vol))
		if err != nil {
			return nil, err
		}

		var drafts []domain.PaperRecord
		doc.Find("div.paper").Each(func(_ int, paper *goquery.Selection) {
			title := strings.TrimSpace(paper.Find("p.title").Text())
			var abs string
			paper.Find("p.links a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
				if strings.EqualFold(strings.TrimSpace(link.Text()), "abs") {
					abs, _ = link.Attr("href")
					return false
				}
				return true
			})
			if title == "" || abs == "" {
				return
			}
			drafts = append(drafts, domain.PaperRecord{
				Title: title,
				URL:   abs,
				Venue: venue,
				Year:  year,
			})
		})

		if len(drafts) == 0 {
			return nil, domain.NewParseError(sourceName,
				fmt.Sprintf("no paper listings in volume %d", vol), nil)
		}
		return drafts, nil
	}), nil
}

// FetchDetail resolves a draft pointing at a PMLR abstract page.
func (c *Client) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	doc, err := c.fetch(ctx, draft.URL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, domain.NewParseError(sourceName, "abstract page has no title element", nil)
	}

	var authors []string
	doc.Find(`meta[name="citation_author"]`).Each(func(_ int, sel *goquery.Selection) {
		if name, ok := sel.Attr("content"); ok && strings.TrimSpace(name) != "" {
			authors = append(authors, strings.TrimSpace(name))
		}
	})

	record := &domain.PaperRecord{
		Title:    title,
		Authors:  authors,
		Abstract: strings.TrimSpace(doc.Find("#abstract").Text()),
		URL:      draft.URL,
		Venue:    draft.Venue,
		Year:     draft.Year,
	}

	if pdf, ok := doc.Find(`meta[name="citation_pdf_url"]`).Attr("content"); ok && pdf != "" {
		record.URL = pdf
	}
	return record, nil
}

// fetch retrieves a page and parses it.
func (c *Client) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := c.http.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewParseError(sourceName, "parsing HTML", err)
	}
	return doc, nil
}
