package ieee

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultScrapeBaseURL is the public Xplore site root.
	DefaultScrapeBaseURL = "https://ieeexplore.ieee.org"

	// DefaultScrapeMinInterval spaces page fetches far enough apart to
	// stay under the site's bot protection threshold.
	DefaultScrapeMinInterval = 2 * time.Second

	scrapeSourceName = "ieee-scrape"
)

// tagRegex strips markup that Xplore embeds in og:title values.
var tagRegex = regexp.MustCompile(`<[^>]*>`)

// ScrapeConfig holds configuration for the Xplore scrape adapter.
type ScrapeConfig struct {
	// BaseURL is the public site root.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between page fetches.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
	RequestBudget int
}

// applyDefaults sets default values for unset configuration fields.
func (c *ScrapeConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultScrapeBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultScrapeMinInterval
	}
}

// ScrapeClient implements the sources.Adapter interface by scraping
// Xplore document pages. It cannot enumerate proceedings; that needs
// the articles API.
type ScrapeClient struct {
	config ScrapeConfig
	http   *sources.Client
}

// Ensure ScrapeClient implements the Adapter interface.
var _ sources.Adapter = (*ScrapeClient)(nil)

// NewScraper creates a new Xplore scrape adapter.
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
		Publisher:     domain.PublisherIEEE,
		Name:          scrapeSourceName,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: proceedings listings need the articles API.
func (c *ScrapeClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(scrapeSourceName, venue, year,
		"proceedings enumeration needs the articles API")
}

// FetchDetail scrapes metadata from a document page.
func (c *ScrapeClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	number := ExtractArticleNumber(draft.URL)
	if number == "" {
		return nil, domain.NewNotFoundError(scrapeSourceName, draft.URL)
	}

	pageURL := fmt.Sprintf("%s/document/%s", c.config.BaseURL, number)
	body, err := c.http.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewParseError(scrapeSourceName, "parsing document page", err)
	}

	rawTitle, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	title := strings.TrimSpace(tagRegex.ReplaceAllString(rawTitle, ""))
	if title == "" {
		return nil, domain.NewParseError(scrapeSourceName, "document page has no og:title", nil)
	}
	if title == "Request Rejected" {
		return nil, domain.NewNetworkError(scrapeSourceName, 0,
			fmt.Errorf("request for document %s rejected by bot protection", number))
	}

	abstract, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	authorLine, _ := doc.Find(`meta[name="parsely-author"]`).Attr("content")

	return &domain.PaperRecord{
		Title:    title,
		Authors:  splitAuthorLine(authorLine),
		Abstract: strings.TrimSpace(abstract),
		URL:      pageURL,
		Venue:    draft.Venue,
		Year:     draft.Year,
	}, nil
}

// splitAuthorLine splits the semicolon-separated parsely-author value.
func splitAuthorLine(raw string) []string {
	parts := strings.Split(raw, ";")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
