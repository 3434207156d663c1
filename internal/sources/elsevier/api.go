// Package elsevier implements the source adapters for Elsevier papers:
// a key-gated article retrieval API variant addressed by PII and a
// ScienceDirect landing page scrape variant. Both only support detail
// lookups for feed completion.
package elsevier

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

const (
	// DefaultAPIBaseURL is the Elsevier article retrieval API root.
	DefaultAPIBaseURL = "https://api.elsevier.com/content/article"

	// DefaultMinInterval is the default spacing between API calls.
	DefaultMinInterval = time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	apiSourceName = "elsevier-api"
)

// piiRegex extracts the PII from a ScienceDirect article URL.
var piiRegex = regexp.MustCompile(`pii/([^/?#]+)`)

// APIConfig holds configuration for the Elsevier API adapter.
type APIConfig struct {
	// BaseURL is the article retrieval API root.
	BaseURL string

	// APIKey is the Elsevier developer key, sent as X-ELS-APIKey.
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

// creatorList accepts both the single-object and list shapes the API
// uses for dc:creator.
type creatorList []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *creatorList) UnmarshalJSON(data []byte) error {
	type creator struct {
		Name string `json:"$"`
	}

	var many []creator
	if err := json.Unmarshal(data, &many); err == nil {
		for _, cr := range many {
			if cr.Name != "" {
				*c = append(*c, cr.Name)
			}
		}
		return nil
	}

	var one creator
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one.Name != "" {
		*c = append(*c, one.Name)
	}
	return nil
}

// retrievalResponse is the JSON envelope of the article endpoint.
type retrievalResponse struct {
	FullText *struct {
		CoreData struct {
			Title       string      `json:"dc:title"`
			Creators    creatorList `json:"dc:creator"`
			Description string      `json:"dc:description"`
		} `json:"coredata"`
	} `json:"full-text-retrieval-response"`
	ErrorResponse *struct {
		Code string `json:"error-code"`
	} `json:"error-response"`
}

// APIClient implements the sources.Adapter interface on the article API.
type APIClient struct {
	config APIConfig
	http   *sources.Client
}

// Ensure APIClient implements the Adapter interface.
var _ sources.Adapter = (*APIClient)(nil)

// NewAPI creates a new Elsevier API adapter.
func NewAPI(cfg APIConfig) *APIClient {
	cfg.applyDefaults()

	throttler := sources.NewThrottler(apiSourceName, cfg.MinInterval, cfg.RequestBudget)
	httpClient := sources.NewClient(sources.ClientConfig{
		Source:       apiSourceName,
		Timeout:      cfg.Timeout,
		APIKey:       cfg.APIKey,
		APIKeyHeader: "X-ELS-APIKey",
	}, throttler)

	return &APIClient{
		config: cfg,
		http:   httpClient,
	}
}

// Descriptor returns the adapter's identity and policy.
func (c *APIClient) Descriptor() domain.AdapterDescriptor {
	return domain.AdapterDescriptor{
		Publisher:     domain.PublisherElsevier,
		Name:          apiSourceName,
		RequiresKey:   true,
		MinInterval:   c.config.MinInterval,
		RequestBudget: c.config.RequestBudget,
	}
}

// Enumerate is unsupported: Elsevier serves journals, not proceedings.
func (c *APIClient) Enumerate(ctx context.Context, venue string, year int) (*sources.Enumeration, error) {
	return nil, domain.NewUnsupportedVenueError(apiSourceName, venue, year, "Elsevier has no venue listings")
}

// FetchDetail resolves a draft whose URL carries a PII.
func (c *APIClient) FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error) {
	pii := ExtractPII(draft.URL)
	if pii == "" {
		return nil, domain.NewNotFoundError(apiSourceName, draft.URL)
	}
	if c.config.APIKey == "" {
		return nil, domain.NewAuthError(apiSourceName, 0, "no API key configured")
	}

	body, err := c.http.GetWithHeaders(ctx, c.config.BaseURL+"/pii/"+pii, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var resp retrievalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewParseError(apiSourceName, "decoding retrieval response", err)
	}
	if resp.ErrorResponse != nil || resp.FullText == nil {
		return nil, domain.NewNotFoundError(apiSourceName, pii)
	}

	core := resp.FullText.CoreData
	return &domain.PaperRecord{
		Title:    strings.TrimSpace(core.Title),
		Authors:  core.Creators,
		Abstract: strings.TrimSpace(core.Description),
		URL:      draft.URL,
	}, nil
}

// ExtractPII extracts the PII from a ScienceDirect article URL.
func ExtractPII(paperURL string) string {
	matches := piiRegex.FindStringSubmatch(paperURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
