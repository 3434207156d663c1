package springer

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultScrapeMinInterval spaces landing page fetches apart.
	DefaultScrapeMinInterval = 2 * time.Second

	springerScrapeName = "springer-scrape"
	natureScrapeName   = "nature-scrape"
)

// ScrapeConfig holds configuration for the landing page scrape adapters.
type ScrapeConfig struct {
	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between page fetches.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
	RequestBudget int
}

// applyDefaults sets default values for unset configuration fields.
func (c *ScrapeConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultScrapeMinInterval
	}
}

// metaSelectors names the meta tags a landing page exposes metadata in.
type metaSelectors struct {
	title    string
	abstract string
	author   string
}

// SpringerLink uses OpenGraph and Highwire tags, nature.com Dublin Core.
var (
	springerMetas = metaSelectors{
		title:    `meta[property="og:title"]`,
		abstract: `meta[property="og:description"]`,
		author:   `meta[name="citation_author"]`,
	}
	natureMetas = metaSelectors{
		title:    `meta[name="dc.title"]`,
		abstract: `meta[name="description"]`,
		author:   `meta[name="dc.creator"]`,
	}
)

// ScrapeClient implements the sources.Adapter interface by scraping
// article landing pages.
type ScrapeClient struct {
	config    ScrapeConfig
	http      *sources.Client
	name      string
	publisher domain.Publisher
	metas     metaSelectors
}

// Ensure ScrapeClient implements the Adapter interface.
var _ sources.Adapter = (*ScrapeClient)(nil)

// NewScraper creates a new SpringerLink scrape adapter.
func NewScraper(cfg ScrapeConfig) *ScrapeClient {
	return newScraper(cfg, springerScrapeName, domain.PublisherSpringer, springerMetas)
}

// NewNatureScraper creates a new nature.com scrape adapter.
func NewNatureScraper(cfg ScrapeConfig) *ScrapeClient {
	return newScraper(cfg, natureScrapeName, domain.PublisherNature, natureMetas)
}

func newScraper(cfg ScrapeConfig, name string, publisher domain.Publisher, metas metaSelectors) *ScrapeClient {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(name, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:  name,
		Timeout: cfg.Timeout,
	}, throttler)

	return &ScrapeClient{
		config:    cfg,
		http:      httpClient,
		name:      name,
		publisher: publisher,
		metas:     metas,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *ScrapeClient) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     c.publisher,
		Name:          c.name,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: Springer Nature serves journals, not
// proceedings.
func (c *ScrapeClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(c.name, venue, year, "Springer Nature has no venue listings")
}

// FetchDetail scrapes metadata from an article landing page.
func (c *ScrapeClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	if strings.Contains(draft.URL, "/book/") {
		return nil, domain.NewNotFoundError(c.name, draft.URL)
	}

	body, err := c.http.Get(ctx, draft.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewParseError(c.name, "parsing landing page", err)
	}

	title, _ := doc.Find(c.metas.title).Attr("content")
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewParseError(c.name, "landing page has no title meta", nil)
	}

	var authors []string
	doc.Find(c.metas.author).Each(func(_ int, sel *goquery.Selection) {
		if name := strings.TrimSpace(sel.AttrOr("content", "")); name != "" {
			authors = append(authors, name)
		}
	})

	abstract, _ := doc.Find(c.metas.abstract).Attr("content")

	return &domain.PaperRecord{
		Title:    title,
		Authors:  authors,
		Abstract: strings.TrimSpace(abstract),
		URL:      draft.URL,
	}, nil
}
