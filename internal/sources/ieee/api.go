// Package ieee implements the source adapters for IEEE Xplore: a
// key-gated articles API variant and a document page scrape variant.
// ICRA, IROS and TPAMI are retrieved through the API; feed completion
// falls back to scraping when no key is configured.
package ieee

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
	// DefaultAPIBaseURL is the IEEE Xplore articles API endpoint.
	DefaultAPIBaseURL = "https://ieeexploreapi.ieee.org/api/v1/search/articles"

	// DefaultAPIBudget is the free tier's daily call limit.
	DefaultAPIBudget = 200

	// DefaultMinInterval is the default spacing between API calls.
	DefaultMinInterval = time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxRecords is the API's fixed page size; larger values are ignored
	// by the service.
	maxRecords = 200

	apiSourceName = "ieee-api"
)

// APIConfig holds configuration for the IEEE articles API adapter.
type APIConfig struct {
	// BaseURL is the articles API endpoint.
	BaseURL string

	// APIKey is the Xplore API key. The adapter cannot operate without it.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between API calls.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Defaults to the free
	// tier's daily limit.
	RequestBudget int
}

// applyDefaults sets default values for unset configuration fields.
func (c *APIConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultAPIBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.RequestBudget == 0 {
		c.RequestBudget = DefaultAPIBudget
	}
}

// searchResponse is the JSON envelope of the articles endpoint.
type searchResponse struct {
	TotalRecords int       `json:"total_records"`
	Articles     []article `json:"articles"`
}

// article is one record in an articles response.
type article struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	PDFURL   string `json:"pdf_url"`
	Authors  struct {
		Authors []struct {
			FullName string `json:"full_name"`
		} `json:"authors"`
	} `json:"authors"`
}

// APIClient implements the sources.Adapter interface on the articles API.
type APIClient struct {
	config APIConfig
	http   *sources.Client
}

// Ensure APIClient implements the Adapter interface.
var _ sources.Adapter = (*APIClient)(nil)

// NewAPI creates a new IEEE articles API adapter.
func NewAPI(cfg APIConfig) *APIClient {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(apiSourceName, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:  apiSourceName,
		Timeout: cfg.Timeout,
	}, throttler)

	return &APIClient{
		config: cfg,
		http:   httpClient,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *APIClient) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     domain.PublisherIEEE,
		Name:          apiSourceName,
		Venues:        []string{"ICRA", "IROS", "TPAMI"},
		EarliestYear:  1979,
		RequiresKey:   true,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate pages through one venue edition. The first batch probes the
// total record count with a single-record request, then each following
// batch fetches one full page.
func (c *APIClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	title, err := publicationTitle(apiSourceName, venue, year)
	if err != nil {
		return nil, err
	}
	if c.config.APIKey == "" {
		return nil, domain.NewAuthError(apiSourceName, 0, "no API key configured")
	}

	probed := false
	total := 0
	offset := 0

	return sources.NewEnumeration(func(ctx context.Context) ([]domain.PaperRecord, error) {
		if !probed {
			probed = true
			resp, err := c.search(ctx, url.Values{
				"publication_title": []string{title},
				"publication_year":  []string{strconv.Itoa(year)},
				"max_records":       []string{"1"},
			})
			if err != nil {
				return nil, err
			}
			if resp.TotalRecords == 0 {
				return nil, domain.NewNotFoundError(apiSourceName,
					fmt.Sprintf("%s %d has no records, the edition may not be indexed yet", venue, year))
			}
			total = resp.TotalRecords
		}

		if offset >= total {
			return nil, nil
		}

		resp, err := c.search(ctx, url.Values{
			"publication_title": []string{title},
			"publication_year":  []string{strconv.Itoa(year)},
			"max_records":       []string{strconv.Itoa(maxRecords)},
			"start_record":      []string{strconv.Itoa(offset)},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Articles) == 0 {
			// The count probe promised more records than the pages hold.
			return nil, domain.NewParseError(apiSourceName,
				fmt.Sprintf("empty page at offset %d of %d records", offset, total), nil)
		}
		offset += maxRecords

		records := make([]domain.PaperRecord, 0, len(resp.Articles))
		for i := range resp.Articles {
			rec := articleToRecord(&resp.Articles[i])
			rec.Venue = venue
			rec.Year = year
			if rec.Resolved() {
				records = append(records, *rec)
			}
		}
		return records, nil
	}), nil
}

// FetchDetail resolves a draft whose URL points at an Xplore document.
func (c *APIClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	number := ExtractArticleNumber(draft.URL)
	if number == "" {
		return nil, domain.NewNotFoundError(apiSourceName, draft.URL)
	}
	if c.config.APIKey == "" {
		return nil, domain.NewAuthError(apiSourceName, 0, "no API key configured")
	}

	resp, err := c.search(ctx, url.Values{"article_number": []string{number}})
	if err != nil {
		return nil, err
	}
	if len(resp.Articles) == 0 {
		return nil, domain.NewNotFoundError(apiSourceName, number)
	}
	return articleToRecord(&resp.Articles[0]), nil
}

// search performs one articles API request.
func (c *APIClient) search(ctx context.Context, query url.Values) (*searchResponse, error) {
	query.Set("apikey", c.config.APIKey)

	body, err := c.http.Get(ctx, c.config.BaseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	// The API reports an exhausted daily quota in the body of a 200.
	if strings.Contains(string(body), "Developer Over Rate") {
		return nil, domain.NewRateLimitError(apiSourceName, 0)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewParseError(apiSourceName, "decoding articles response", err)
	}
	return &resp, nil
}

// articleToRecord converts an API article to a paper record.
func articleToRecord(a *article) *domain.PaperRecord {
	authors := make([]string, 0, len(a.Authors.Authors))
	for _, au := range a.Authors.Authors {
		if name := strings.TrimSpace(au.FullName); name != "" {
			authors = append(authors, name)
		}
	}

	return &domain.PaperRecord{
		Title:   strings.TrimSpace(a.Title),
		Authors: authors,
		// Early publications carry no abstract.
		Abstract: strings.TrimSpace(a.Abstract),
		URL:      a.PDFURL,
	}
}
