// Package arxiv implements the source adapter for the arXiv export API.
//
// arXiv carries no proceedings, so the adapter only supports detail
// lookups: a draft record whose URL points at an arxiv.org abstract page
// is resolved through the Atom query endpoint.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultBaseURL is the default arXiv export API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultMinInterval is the default spacing between requests.
	// The arXiv API terms ask for no more than one request per 3 seconds
	// for bulk access; single lookups tolerate a shorter interval.
	DefaultMinInterval = time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// sourceName is the adapter name used in logs and errors.
	sourceName = "arxiv"
)

// idRegex extracts the arXiv ID from an abstract URL, dropping any
// version suffix. Matches "arxiv.org/abs/2301.12345v1" and legacy IDs
// like "arxiv.org/abs/hep-th/9901001".
var idRegex = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(.+?)(?:v\d+)?(?:\.pdf)?$`)

// Config holds configuration for the arXiv adapter.
type Config struct {
	// BaseURL is the arXiv export API base URL.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between requests.
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

// Client implements the sources.Adapter interface for arXiv.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new arXiv adapter with the given configuration.
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
		Publisher:     domain.PublisherArXiv,
		Name:          sourceName,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: arXiv hosts preprints, not proceedings.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "arXiv has no venue listings")
}

// FetchDetail resolves a draft whose URL points at an arXiv paper.
func (c *Client) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	id := ExtractID(draft.URL)
	if id == "" {
		return nil, domain.NewNotFoundError(sourceName, draft.URL)
	}

	queryURL, err := c.buildQueryURL(id)
	if err != nil {
		return nil, fmt.Errorf("building query URL: %w", err)
	}

	body, err := c.http.Get(ctx, queryURL)
	if err != nil {
		return nil, err
	}

	var feed Feed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, domain.NewParseError(sourceName, "decoding Atom feed", err)
	}

	if len(feed.Entries) == 0 {
		return nil, domain.NewNotFoundError(sourceName, id)
	}

	record := entryToRecord(&feed.Entries[0])
	if !record.Resolved() {
		return nil, domain.NewNotFoundError(sourceName, id)
	}
	return record, nil
}

// buildQueryURL constructs the id_list lookup URL.
func (c *Client) buildQueryURL(id string) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/query"
	query := url.Values{}
	query.Set("id_list", id)
	query.Set("max_results", "1")
	base.RawQuery = query.Encode()
	return base.String(), nil
}

// entryToRecord converts an Atom entry to a paper record.
func entryToRecord(entry *Entry) *domain.PaperRecord {
	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		name := strings.TrimSpace(a.Name)
		if name != "" {
			authors = append(authors, name)
		}
	}

	// Prefer the abstract page link; entry IDs carry version suffixes.
	pageURL := strings.TrimSpace(entry.ID)
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			pageURL = link.Href
			break
		}
	}

	return &domain.PaperRecord{
		Title:    normalizeWhitespace(entry.Title),
		Authors:  authors,
		Abstract: normalizeWhitespace(entry.Summary),
		URL:      pageURL,
	}
}

// ExtractID extracts the arXiv ID from an abstract or PDF URL.
// Input: "https://arxiv.org/abs/2301.12345v1" yields "2301.12345".
func ExtractID(paperURL string) string {
	matches := idRegex.FindStringSubmatch(paperURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// normalizeWhitespace trims and collapses multiple whitespace characters.
// arXiv titles and abstracts carry hard line breaks.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
