// Package springer implements the source adapters for Springer Nature
// papers: a key-gated metadata API variant addressed by DOI and landing
// page scrape variants for SpringerLink and nature.com. All variants
// only support detail lookups for feed completion.
package springer

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultAPIBaseURL is the Springer Nature metadata API endpoint.
	DefaultAPIBaseURL = "https://api.springernature.com/meta/v2/json"

	// DefaultMinInterval is the default spacing between API calls.
	DefaultMinInterval = time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	springerAPIName = "springer-api"
	natureAPIName   = "nature-api"
)

// APIConfig holds configuration for the metadata API adapters.
type APIConfig struct {
	// BaseURL is the metadata API endpoint.
	BaseURL string

	// APIKey is the Springer Nature key, sent as the api_key parameter.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// MinInterval is the minimum spacing between API calls.
	MinInterval time.Duration

	// RequestBudget caps outgoing calls per run. Zero means unlimited.
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
}

// metaResponse is the JSON envelope of the metadata endpoint.
type metaResponse struct {
	Records []struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		DOI      string `json:"doi"`
		Creators []struct {
			Creator string `json:"creator"`
		} `json:"creators"`
	} `json:"records"`
}

// APIClient implements the sources.Adapter interface on the metadata
// API. The same endpoint serves Springer and Nature papers; the two
// variants differ only in how the DOI is derived from the paper URL.
type APIClient struct {
	config     APIConfig
	http       *sources.Client
	name       string
	publisher  domain.Publisher
	extractDOI func(string) string
}

// Ensure APIClient implements the Adapter interface.
var _ sources.Adapter = (*APIClient)(nil)

// NewAPI creates a new Springer metadata API adapter.
func NewAPI(cfg APIConfig) *APIClient {
	return newAPI(cfg, springerAPIName, domain.PublisherSpringer, ExtractDOI)
}

// NewNatureAPI creates a new Nature metadata API adapter.
func NewNatureAPI(cfg APIConfig) *APIClient {
	return newAPI(cfg, natureAPIName, domain.PublisherNature, ExtractNatureDOI)
}

func newAPI(cfg APIConfig, name string, publisher domain.Publisher, extract func(string) string) *APIClient {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(name, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:  name,
		Timeout: cfg.Timeout,
	}, throttler)

	return &APIClient{
		config:     cfg,
		http:       httpClient,
		name:       name,
		publisher:  publisher,
		extractDOI: extract,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *APIClient) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     c.publisher,
		Name:          c.name,
		RequiresKey:   true,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: Springer Nature serves journals, not
// proceedings.
func (c *APIClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(c.name, venue, year, "Springer Nature has no venue listings")
}

// FetchDetail resolves a draft whose URL carries a DOI.
func (c *APIClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	// Book landing pages carry a DOI but no article metadata.
	if strings.Contains(draft.URL, "/book/") {
		return nil, domain.NewNotFoundError(c.name, draft.URL)
	}
	doi := c.extractDOI(draft.URL)
	if doi == "" {
		return nil, domain.NewNotFoundError(c.name, draft.URL)
	}
	if c.config.APIKey == "" {
		return nil, domain.NewAuthError(c.name, 0, "no API key configured")
	}

	query := url.Values{}
	query.Set("q", "doi:"+doi)
	query.Set("api_key", c.config.APIKey)

	body, err := c.http.Get(ctx, c.config.BaseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp metaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewParseError(c.name, "decoding metadata response", err)
	}
	if len(resp.Records) == 0 {
		return nil, domain.NewNotFoundError(c.name, doi)
	}

	rec := resp.Records[0]
	authors := make([]string, 0, len(rec.Creators))
	for _, cr := range rec.Creators {
		if name := strings.TrimSpace(cr.Creator); name != "" {
			authors = append(authors, name)
		}
	}

	return &domain.PaperRecord{
		Title:    strings.TrimSpace(rec.Title),
		Authors:  authors,
		Abstract: strings.TrimSpace(rec.Abstract),
		URL:      draft.URL,
	}, nil
}
