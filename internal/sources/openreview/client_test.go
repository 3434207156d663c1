package openreview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

func noteJSON(id, title string, authors []string) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"content": map[string]interface{}{
			"title":    map[string]interface{}{"value": title},
			"authors":  map[string]interface{}{"value": authors},
			"abstract": map[string]interface{}{"value": "An abstract for " + title + "."},
			"pdf":      map[string]interface{}{"value": "/pdf/" + id + ".pdf"},
		},
	}
}

func newTestClient(baseURL string, pageSize int) *Client {
	return New(Config{
		BaseURL:     baseURL,
		MinInterval: time.Millisecond,
		PageSize:    pageSize,
	})
}

func TestClient_Descriptor(t *testing.T) {
	desc := New(Config{}).Descriptor()

	assert.Equal(t, domain.PublisherOpenReview, desc.Publisher)
	assert.Equal(t, []string{"ICLR"}, desc.Venues)
	assert.Equal(t, 2020, desc.EarliestYear)
}

func TestClient_Enumerate_VenueValidation(t *testing.T) {
	client := New(Config{})
	ctx := context.Background()

	t.Run("ICLR before 2020", func(t *testing.T) {
		_, err := client.Enumerate(ctx, "ICLR", 2019)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)
	})

	t.Run("unknown venue", func(t *testing.T) {
		_, err := client.Enumerate(ctx, "NeurIPS", 2022)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)
	})
}

func TestClient_Enumerate(t *testing.T) {
	t.Run("pages through notes until a short page", func(t *testing.T) {
		var offsets []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "ICLR.cc/2023/Conference", q.Get("content.venueid"))
			offsets = append(offsets, q.Get("offset"))

			var notes []map[string]interface{}
			if q.Get("offset") == "0" {
				notes = []map[string]interface{}{
					noteJSON("aaa", "First Paper", []string{"Ann Author"}),
					noteJSON("bbb", "Second Paper", []string{"Bob Author"}),
				}
			} else {
				notes = []map[string]interface{}{
					noteJSON("ccc", "Third Paper", []string{"Cem Author"}),
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"notes": notes, "count": 3})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 2)

		enum, err := client.Enumerate(context.Background(), "ICLR", 2023)
		require.NoError(t, err)

		records, err := sources.Collect(context.Background(), enum)
		require.NoError(t, err)

		assert.Equal(t, []string{"0", "2"}, offsets)
		require.Len(t, records, 3)
		assert.Equal(t, "First Paper", records[0].Title)
		assert.Equal(t, []string{"Ann Author"}, records[0].Authors)
		assert.Equal(t, "ICLR", records[0].Venue)
		assert.Equal(t, 2023, records[0].Year)
		assert.Equal(t, DefaultSiteURL+"/pdf?id=aaa", records[0].URL)
	})
}

func TestClient_FetchDetail(t *testing.T) {
	t.Run("resolves a forum URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "xyz", r.URL.Query().Get("id"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"notes": []map[string]interface{}{
					noteJSON("xyz", "Forum Paper", []string{"Dee Author"}),
				},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)
		draft := &domain.PaperRecord{URL: "https://openreview.net/forum?id=xyz"}

		record, err := client.FetchDetail(context.Background(), draft)
		require.NoError(t, err)

		assert.Equal(t, "Forum Paper", record.Title)
		assert.Equal(t, []string{"Dee Author"}, record.Authors)
		assert.Contains(t, record.Abstract, "Forum Paper")
	})

	t.Run("not found for a non-openreview URL", func(t *testing.T) {
		client := newTestClient("http://unused.example", 0)
		draft := &domain.PaperRecord{URL: "https://arxiv.org/abs/2301.12345"}

		_, err := client.FetchDetail(context.Background(), draft)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("not found for a missing note", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"notes": []map[string]interface{}{}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)
		draft := &domain.PaperRecord{URL: "https://openreview.net/forum?id=gone"}

		_, err := client.FetchDetail(context.Background(), draft)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "abc", ExtractID("https://openreview.net/forum?id=abc"))
	assert.Equal(t, "abc", ExtractID("https://openreview.net/pdf?id=abc"))
	assert.Equal(t, "", ExtractID("https://arxiv.org/abs/2301.12345"))
}
