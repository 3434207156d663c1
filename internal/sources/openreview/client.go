// Package openreview implements the source adapter for the OpenReview
// notes API, which hosts ICLR proceedings.
package openreview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultBaseURL is the OpenReview API v2 root.
	DefaultBaseURL = "https://api2.openreview.net"

	// DefaultSiteURL is the public site used for forum links.
	DefaultSiteURL = "https://openreview.net"

	// DefaultMinInterval is the default spacing between API calls.
	DefaultMinInterval = time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the number of notes requested per page.
	DefaultPageSize = 1000

	sourceName = "openreview"
)

// Config holds configuration for the OpenReview adapter.
type Config struct {
	// BaseURL is the API root.
	BaseURL string

	// SiteURL is the public site root used to build forum links.
	SiteURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between API calls.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
	RequestBudget int

	// PageSize is the number of notes requested per page.
	PageSize int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SiteURL == "" {
		c.SiteURL = DefaultSiteURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
}

// notesResponse is the JSON envelope of the notes endpoint.
type notesResponse struct {
	Notes []note `json:"notes"`
	Count int    `json:"count"`
}

// note is one OpenReview submission. Content fields wrap their values.
type note struct {
	ID      string `json:"id"`
	Content struct {
		Title struct {
			Value string `json:"value"`
		} `json:"title"`
		Authors struct {
			Value []string `json:"value"`
		} `json:"authors"`
		Abstract struct {
			Value string `json:"value"`
		} `json:"abstract"`
		PDF struct {
			Value string `json:"value"`
		} `json:"pdf"`
	} `json:"content"`
}

// Client implements the sources.Adapter interface for OpenReview.
type Client struct {
	config Config
	http   *sources.Client
}

// Ensure Client implements the Adapter interface.
var _ sources.Adapter = (*Client)(nil)

// New creates a new OpenReview adapter with the given configuration.
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
		Publisher:     domain.PublisherOpenReview,
		Name:          sourceName,
		Venues:        []string{"ICLR"},
		EarliestYear:  2020,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate pages through the notes of one ICLR edition. Each batch is
// one API page; the enumeration ends when a page comes back short.
func (c *Client) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	if !strings.EqualFold(venue, "ICLR") {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year, "")
	}
	if year < 2020 {
		return nil, domain.NewUnsupportedVenueError(sourceName, venue, year,
			"accepted papers are only listed under a venue id from 2020")
	}

	venueID := fmt.Sprintf("ICLR.cc/%d/Conference", year)
	offset := 0
	done := false

	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if done {
			return nil, nil
		}

		resp, err := c.fetchNotes(ctx, url.Values{
			"content.venueid": []string{venueID},
			"limit":           []string{strconv.Itoa(c.config.PageSize)},
			"offset":          []string{strconv.Itoa(offset)},
		})
		if err != nil {
			return nil, err
		}

		if len(resp.Notes) < c.config.PageSize {
			done = true
		}
		offset += len(resp.Notes)

		drafts := make([]domain.PaperRecord, 0, len(resp.Notes))
		for i := range resp.Notes {
			rec := c.noteToRecord(&resp.Notes[i])
			rec.Venue = "ICLR"
			rec.Year = year
			if rec.Resolved() {
				drafts = append(drafts, *rec)
			}
		}
		return drafts, nil
	}), nil
}

// FetchDetail resolves a draft whose URL points at an OpenReview forum.
func (c *Client) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	id := ExtractID(draft.URL)
	if id == "" {
		return nil, domain.NewNotFoundError(sourceName, draft.URL)
	}

	resp, err := c.fetchNotes(ctx, url.Values{"id": []string{id}})
	if err != nil {
		return nil, err
	}
	if len(resp.Notes) == 0 {
		return nil, domain.NewNotFoundError(sourceName, id)
	}

	return c.noteToRecord(&resp.Notes[0]), nil
}

// fetchNotes queries the notes endpoint.
func (c *Client) fetchNotes(ctx context.Context, query url.Values) (*notesResponse, error) {
	body, err := c.http.Get(ctx, c.config.BaseURL+"/notes?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp notesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewParseError(sourceName, "decoding notes response", err)
	}
	return &resp, nil
}

// noteToRecord converts a note to a paper record.
func (c *Client) noteToRecord(n *note) *domain.PaperRecord {
	rec := &domain.PaperRecord{
		Title:    strings.TrimSpace(n.Content.Title.Value),
		Authors:  n.Content.Authors.Value,
		Abstract: strings.TrimSpace(n.Content.Abstract.Value),
		URL:      c.config.SiteURL + "/forum?id=" + n.ID,
	}
	if n.Content.PDF.Value != "" {
		rec.URL = c.config.SiteURL + "/pdf?id=" + n.ID
	}
	return rec
}

// ExtractID extracts the note ID from a forum or pdf URL.
func ExtractID(paperURL string) string {
	u, err := url.Parse(paperURL)
	if err != nil {
		return ""
	}
	if !strings.Contains(u.Host, "openreview.net") {
		return ""
	}
	return u.Query().Get("id")
}
