package elsevier

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
	// DefaultScrapeMinInterval spaces ScienceDirect page fetches apart.
	DefaultScrapeMinInterval = 2 * time.Second

	scrapeSourceName = "elsevier-scrape"
)

// ScrapeConfig holds configuration for the ScienceDirect scrape adapter.
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

// ScrapeClient implements the sources.Adapter interface by scraping
// ScienceDirect article landing pages.
type ScrapeClient struct {
	config ScrapeConfig
	http   *sources.Client
}

// Ensure ScrapeClient implements the Adapter interface.
var _ sources.Adapter = (*ScrapeClient)(nil)

// NewScraper creates a new ScienceDirect scrape adapter.
func NewScraper(cfg ScrapeConfig) *ScrapeClient {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(scrapeSourceName, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:  scrapeSourceName,
		Timeout: cfg.Timeout,
	}, throttler)

	return &ScrapeClient{
		config: cfg,
		http:   httpClient,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *ScrapeClient) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     domain.PublisherElsevier,
		Name:          scrapeSourceName,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: Elsevier serves journals, not proceedings.
func (c *ScrapeClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(scrapeSourceName, venue, year, "Elsevier has no venue listings")
}

// FetchDetail scrapes metadata from an article landing page.
func (c *ScrapeClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	body, err := c.http.Get(ctx, draft.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewParseError(scrapeSourceName, "parsing landing page", err)
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewParseError(scrapeSourceName, "landing page has no og:title", nil)
	}

	return &domain.PaperRecord{
		Title:    title,
		Authors:  collectAuthors(doc),
		Abstract: findAbstract(doc),
		URL:      draft.URL,
	}, nil
}

// collectAuthors pairs the given-name and surname spans of the author
// banner.
func collectAuthors(doc *goquery.Document) []string {
	var given, surnames []string
	doc.Find("span.given-name").Each(func(_ int, sel *goquery.Selection) {
		given = append(given, strings.TrimSpace(sel.Text()))
	})
	doc.Find("span.text.surname").Each(func(_ int, sel *goquery.Selection) {
		surnames = append(surnames, strings.TrimSpace(sel.Text()))
	})

	n := len(given)
	if len(surnames) < n {
		n = len(surnames)
	}
	authors := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := strings.TrimSpace(given[i] + " " + surnames[i])
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// findAbstract locates the abstract, which follows its heading element.
func findAbstract(doc *goquery.Document) string {
	var abstract string
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), "abstract") {
			return true
		}
		abstract = strings.TrimSpace(sel.Next().Text())
		return false
	})
	return abstract
}
