package ieee

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
)

const documentPage = `<html><head>
<meta property="og:title" content="Gradient-Based Learning Applied to <i>Document</i> Recognition">
<meta property="og:description" content="Multilayer neural networks trained with gradient descent.">
<meta name="parsely-author" content="Y. Lecun; L. Bottou; Y. Bengio">
</head><body></body></html>`

const rejectedPage = `<html><head>
<meta property="og:title" content="Request Rejected">
</head><body></body></html>`

func newTestScraper(baseURL string) *ScrapeClient {
	return NewScraper(ScrapeConfig{
		BaseURL:     baseURL,
		MinInterval: time.Millisecond,
	})
}

func TestScrapeClient_Descriptor(t *testing.T) {
	desc := NewScraper(ScrapeConfig{}).Descriptor()

	assert.Equal(t, domain.PublisherIEEE, desc.Publisher)
	assert.Equal(t, "ieee-scrape", desc.Name)
	assert.Empty(t, desc.Venues)
	assert.False(t, desc.RequiresKey)
}

func TestScrapeClient_Enumerate(t *testing.T) {
	client := NewScraper(ScrapeConfig{})

	_, err := client.Enumerate(context.Background(), "ICRA", 2023)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)
}

func TestScrapeClient_FetchDetail(t *testing.T) {
	t.Run("scrapes the document page", func(t *testing.T) {
		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			w.Write([]byte(documentPage))
		}))
		defer server.Close()

		client := newTestScraper(server.URL)
		draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/document/726791"}

		record, err := client.FetchDetail(context.Background(), draft)
		require.NoError(t, err)

		assert.Equal(t, "/document/726791", requestedPath)
		// Embedded markup in the title is stripped.
		assert.Equal(t, "Gradient-Based Learning Applied to Document Recognition", record.Title)
		assert.Equal(t, []string{"Y. Lecun", "L. Bottou", "Y. Bengio"}, record.Authors)
		assert.Equal(t, "Multilayer neural networks trained with gradient descent.", record.Abstract)
		assert.Equal(t, server.URL+"/document/726791", record.URL)
	})

	t.Run("network error when bot protection rejects the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(rejectedPage))
		}))
		defer server.Close()

		client := newTestScraper(server.URL)
		draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/document/1"}

		_, err := client.FetchDetail(context.Background(), draft)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("parse error when og:title is missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><head></head><body></body></html>"))
		}))
		defer server.Close()

		client := newTestScraper(server.URL)
		draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/document/2"}

		_, err := client.FetchDetail(context.Background(), draft)
		assert.ErrorIs(t, err, domain.ErrParse)
	})
}
