// Package ecva implements the source adapter for the European Computer
// Vision Association site (ecva.net), which hosts ECCV proceedings on a
// single static listing page.
package ecva

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
	// DefaultBaseURL is the ECVA site root.
	DefaultBaseURL = "https://www.ecva.net"

	// DefaultMinInterval is the default spacing between page fetches.
	DefaultMinInterval = 500 * time.Millisecond

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	sourceName = "ecva"
)

// Config holds configuration for the ECVA adapter.
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

// Client implements the sources.Adapter interface for the ECVA site.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new ECVA adapter with the given configuration.
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
		Publisher:     domain.PublisherECVA,
		Name:          sourceName,
		Venues:        []string{"ECCV"},
		EarliestYear:  2018,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate lists one ECCV edition. The site keeps every edition on one
// listing page, so the enumeration yields a single batch filtered by
// year.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	if !strings.EqualFold(venue, "ECCV") {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "")
	}
	if year < 2018 {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "ecva.net hosts ECCV from 2018")
	}
	if year%2 != 0 {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "ECCV takes place in even years")
	}

	done := false
	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if done {
			return nil, nil
		}
		done = true

		doc, err := c.fetch(ctx, c.config.BaseURL+"/papers.php")
		if err != nil {
			return nil, err
		}

		marker := fmt.Sprintf("eccv_%d", year)
		var drafts []domain.PaperRecord
		doc.Find("dt.ptitle a").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if !strings.Contains(strings.ToLower(href), marker) {
				return
			}
			title := strings.TrimSpace(sel.Text())
			if title == "" {
				return
			}
			drafts = append(drafts, domain.PaperRecord{
				Title: title,
				URL:   c.config.BaseURL + "/" + strings.TrimPrefix(href, "/"),
				Venue: "ECCV",
				Year:  year,
			})
		})

		if len(drafts) == 0 {
			return nil, domain.NewParseError(sourceName,
				fmt.Sprintf("no ECCV %d papers on listing page", year), nil)
		}
		return drafts, nil
	}), nil
}

// FetchDetail resolves a draft pointing at an ECVA paper page. The page
// structure mirrors the CVF open access layout.
func (c *Client) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	doc, err := c.fetch(ctx, draft.URL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("#papertitle").Text())
	if title == "" {
		return nil, domain.NewParseError(sourceName, "paper page has no title element", nil)
	}

	record := &domain.PaperRecord{
		Title:    title,
		Authors:  splitAuthors(doc.Find("#authors b i").First().Text()),
		Abstract: strings.TrimSpace(doc.Find("#abstract").Text()),
		URL:      draft.URL,
		Venue:    draft.Venue,
		Year:     draft.Year,
	}

	// The PDF anchor uses a path relative to the paper page.
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(sel.Text()), "pdf") {
			return true
		}
		if href, ok := sel.Attr("href"); ok && href != "" {
			href = strings.ReplaceAll(href, "../", "")
			record.URL = c.config.BaseURL + "/" + strings.TrimPrefix(href, "/")
		}
		return false
	})

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
