// Package cvf implements the source adapter for the CVF open access site
// (openaccess.thecvf.com), which hosts CVPR, ICCV and WACV proceedings as
// static HTML pages.
package cvf

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
	// DefaultBaseURL is the CVF open access site root.
	DefaultBaseURL = "https://openaccess.thecvf.com"

	// DefaultMinInterval is the default spacing between page fetches.
	DefaultMinInterval = 500 * time.Millisecond

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	sourceName = "cvf"
)

// Config holds configuration for the CVF adapter.
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

// Client implements the sources.Adapter interface for the CVF site.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new CVF adapter with the given configuration.
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
		Publisher:     domain.PublisherCVF,
		Name:          sourceName,
		Venues:        []string{"CVPR", "ICCV", "WACV"},
		EarliestYear:  2013,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// validateVenue checks the venue/year support window.
// The site hosts CVPR from 2013, ICCV in odd years from 2013, and WACV
// from 2020.
func (c *Client) validateVenue(venue string, year int) error {
	switch strings.ToUpper(venue) {
	case "CVPR":
		if year < 2013 {
			return domain.NewUnsupportedVenueError(sourceName, venue, year, "open access hosts CVPR from 2013")
		}
	case "ICCV":
		if year < 2013 {
			return domain.NewUnsupportedVenueError(sourceName, venue, year, "open access hosts ICCV from 2013")
		}
		if year%2 == 0 {
			return domain.NewUnsupportedVenueError(sourceName, venue, year, "ICCV takes place in odd years")
		}
	case "WACV":
		if year < 2020 {
			return domain.NewUnsupportedVenueError(sourceName, venue, year, "open access hosts WACV from 2020")
		}
	default:
		return domain.NewUnsupportedVenueError(sourceName, venue, year, "")
	}
	return nil
}

// Enumerate lists one venue edition. The first batch comes from the
// all-days overview page; editions split into day pages yield one batch
// per day page.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	if err := c.validateVenue(venue, year); err != nil {
		return nil, err
	}

	editionPath := fmt.Sprintf("%s%d", strings.ToUpper(venue), year)
	var dayPaths []string
	started := false

	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if !started {
			started = true

			doc, err := c.fetch(ctx, c.config.BaseURL+"/"+editionPath+"?day=all")
			if err != nil {
				return nil, err
			}

			drafts := c.collectTitles(doc, venue, year)
			if len(drafts) > 0 {
				return drafts, nil
			}

			// Recent editions list per-day pages instead of an all-days
			// overview.
			doc, err = c.fetch(ctx, c.config.BaseURL+"/"+editionPath)
			if err != nil {
				return nil, err
			}
			dayPaths = c.collectDayLinks(doc, editionPath)
			if len(dayPaths) == 0 {
				return nil, domain.NewParseError(sourceName,
					fmt.Sprintf("no paper or day listings on %s", editionPath), nil)
			}
		}

		if len(dayPaths) == 0 {
			return nil, nil
		}

		next := dayPaths[0]
		dayPaths = dayPaths[1:]

		doc, err := c.fetch(ctx, c.config.BaseURL+"/"+strings.TrimPrefix(next, "/"))
		if err != nil {
			return nil, err
		}
		drafts := c.collectTitles(doc, venue, year)
		if len(drafts) == 0 {
			return nil, domain.NewParseError(sourceName,
				fmt.Sprintf("no paper listings on day page %s", next), nil)
		}
		return drafts, nil
	}), nil
}

// FetchDetail resolves a draft pointing at a CVF paper page.
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

	// Prefer the direct PDF link over the landing page.
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

// collectTitles extracts title+URL drafts from a listing page.
func (c *Client) collectTitles(doc *goquery.Document, venue string, year int) []domain.PaperRecord {
	var drafts []domain.PaperRecord
	doc.Find("dt.ptitle a").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if title == "" || href == "" {
			return
		}
		drafts = append(drafts, domain.PaperRecord{
			Title: title,
			URL:   c.config.BaseURL + "/" + strings.TrimPrefix(href, "/"),
			Venue: venue,
			Year:  year,
		})
	})
	return drafts
}

// collectDayLinks extracts per-day listing paths from an edition index.
func (c *Client) collectDayLinks(doc *goquery.Document, editionPath string) []string {
	var paths []string
	seen := make(map[string]struct{})
	doc.Find("dd a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, editionPath) || !strings.Contains(href, "day=") {
			return
		}
		// The all-days link duplicates the day pages.
		if strings.Contains(href, "day=all") {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		paths = append(paths, href)
	})
	return paths
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
