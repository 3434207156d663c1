// Package neurips implements the source adapter for the NeurIPS
// proceedings site (papers.nips.cc).
package neurips

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
	// DefaultBaseURL is the NeurIPS proceedings site root.
	DefaultBaseURL = "https://papers.nips.cc"

	// DefaultMinInterval is the default spacing between page fetches.
	DefaultMinInterval = 500 * time.Millisecond

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	sourceName = "neurips"
)

// Config holds configuration for the NeurIPS adapter.
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

// Client implements the sources.Adapter interface for papers.nips.cc.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new NeurIPS adapter with the given configuration.
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
		Publisher:     domain.PublisherNeurIPS,
		Name:          sourceName,
		Venues:        []string{"NeurIPS"},
		EarliestYear:  1987,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate lists one NeurIPS edition from its year index page.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	if !strings.EqualFold(venue, "NeurIPS") && !strings.EqualFold(venue, "NIPS") {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "")
	}
	if year < 1987 {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "the first NeurIPS took place in 1987")
	}

	done := false
	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if done {
			return nil, nil
		}
		done = true

		doc, err := c.fetch(ctx, fmt.Sprintf("%s/paper_files/paper/%d", c.config.BaseURL, year))
		if err != nil {
			return nil, err
		}

		var drafts []domain.PaperRecord
		doc.Find("ul.paper-list li a").Each(func(_ int, sel *goquery.Selection) {
			title := strings.TrimSpace(sel.Text())
			href, _ := sel.Attr("href")
			if title == "" || href == "" {
				return
			}
			drafts = append(drafts, domain.PaperRecord{
				Title: title,
				URL:   c.config.BaseURL + "/" + strings.TrimPrefix(href, "/"),
				Venue: "NeurIPS",
				Year:  year,
			})
		})

		if len(drafts) == 0 {
			return nil, domain.NewParseError(sourceName,
				fmt.Sprintf("no paper listings for %d", year), nil)
		}
		return drafts, nil
	}), nil
}

// FetchDetail resolves a draft pointing at a NeurIPS paper page.
func (c *Client) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	doc, err := c.fetch(ctx, draft.URL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return nil, domain.NewParseError(sourceName, "paper page has no title element", nil)
	}

	record := &domain.PaperRecord{
		Title:    title,
		Authors:  splitAuthors(doc.Find("p i").First().Text()),
		Abstract: findAbstract(doc),
		URL:      draft.URL,
		Venue:    draft.Venue,
		Year:     draft.Year,
	}

	if pdf, ok := doc.Find(`meta[name="citation_pdf_url"]`).Attr("content"); ok && pdf != "" {
		record.URL = pdf
	}
	return record, nil
}

// findAbstract locates the abstract text, which follows the "Abstract"
// heading. Some editions insert an empty paragraph in between.
func findAbstract(doc *goquery.Document) string {
	var abstract string
	doc.Find("h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(sel.Text()), "abstract") {
			return true
		}
		sel.NextAll().Filter("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if text := strings.TrimSpace(p.Text()); text != "" {
				abstract = text
				return false
			}
			return true
		})
		return false
	})
	return abstract
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

// splitAuthors splits a comma-separated author line.
func splitAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
