package ieee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
	"github.com/mdaehl/PaperStream/internal/sources"
)

func articleJSON(title string, authors ...string) map[string]interface{} {
	authorList := make([]map[string]interface{}, 0, len(authors))
	for _, a := range authors {
		authorList = append(authorList, map[string]interface{}{"full_name": a})
	}
	return map[string]interface{}{
		"title":    title,
		"abstract": "Abstract of " + title + ".",
		"pdf_url":  "https://ieeexplore.ieee.org/stamp/stamp.jsp?arnumber=123",
		"authors":  map[string]interface{}{"authors": authorList},
	}
}

func newTestAPI(baseURL string, budget int) *APIClient {
	return NewAPI(APIConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		MinInterval:   time.Millisecond,
		RequestBudget: budget,
	})
}

func TestAPIConfig_applyDefaults(t *testing.T) {
	cfg := APIConfig{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultAPIBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAPIBudget, cfg.RequestBudget)
}

func TestAPIClient_Descriptor(t *testing.T) {
	desc := NewAPI(APIConfig{}).Descriptor()

	assert.Equal(t, domain.PublisherIEEE, desc.Publisher)
	assert.Equal(t, "ieee-api", desc.Name)
	assert.Equal(t, []string{"ICRA", "IROS", "TPAMI"}, desc.Venues)
	assert.True(t, desc.RequiresKey)
	assert.Equal(t, 200, desc.RequestBudget)
}

func TestPublicationTitle(t *testing.T) {
	tests := []struct {
		name     string
		venue    string
		year     int
		expected string
	}{
		{"ICRA", "ICRA", 2023, "IEEE International Conference on Robotics and Automation"},
		{"modern IROS", "IROS", 2020, "IEEE/RSJ International Conference on Intelligent Robots and Systems"},
		{"early IROS", "IROS", 1990, "International Workshop on Intelligent Robots"},
		{"misspelled 1997 IROS", "IROS", 1997, "IEEE/RSJ International Conference on Intelligent Robot and Systems"},
		{"TPAMI", "TPAMI", 1995, "IEEE Transactions on Pattern Analysis and Machine Intelligence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, err := publicationTitle("ieee-api", tt.venue, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, title)
		})
	}

	t.Run("before the venue existed", func(t *testing.T) {
		_, err := publicationTitle("ieee-api", "ICRA", 1983)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)

		_, err = publicationTitle("ieee-api", "IROS", 1987)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)

		_, err = publicationTitle("ieee-api", "TPAMI", 1978)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)
	})

	t.Run("unknown venue", func(t *testing.T) {
		_, err := publicationTitle("ieee-api", "CVPR", 2023)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVenue)
	})
}

func TestAPIClient_Enumerate(t *testing.T) {
	t.Run("probes the total then pages through records", func(t *testing.T) {
		const total = 3
		var starts []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "test-key", q.Get("apikey"))
			require.Equal(t, "IEEE International Conference on Robotics and Automation", q.Get("publication_title"))

			if q.Get("max_records") == "1" {
				json.NewEncoder(w).Encode(map[string]interface{}{"total_records": total})
				return
			}

			starts = append(starts, q.Get("start_record"))
			articles := make([]map[string]interface{}, 0, total)
			for i := 0; i < total; i++ {
				articles = append(articles, articleJSON(fmt.Sprintf("Robot Paper %d", i), "Grace Hopper"))
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total_records": total,
				"articles":      articles,
			})
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 0)

		enum, err := client.Enumerate(context.Background(), "ICRA", 2023)
		require.NoError(t, err)

		records, err := sources.Collect(context.Background(), enum)
		require.NoError(t, err)

		assert.Equal(t, []string{"0"}, starts)
		require.Len(t, records, total)
		assert.Equal(t, "Robot Paper 0", records[0].Title)
		assert.Equal(t, []string{"Grace Hopper"}, records[0].Authors)
		assert.Equal(t, "ICRA", records[0].Venue)
		assert.Equal(t, 2023, records[0].Year)
	})

	t.Run("pages over the fixed page size", func(t *testing.T) {
		const total = 250
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("max_records") == "1" {
				json.NewEncoder(w).Encode(map[string]interface{}{"total_records": total})
				return
			}
			start, _ := strconv.Atoi(q.Get("start_record"))
			n := maxRecords
			if start+n > total {
				n = total - start
			}
			articles := make([]map[string]interface{}, 0, n)
			for i := 0; i < n; i++ {
				articles = append(articles, articleJSON(fmt.Sprintf("Paper %d", start+i)))
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total_records": total,
				"articles":      articles,
			})
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 0)

		enum, err := client.Enumerate(context.Background(), "IROS", 2022)
		require.NoError(t, err)

		records, err := sources.Collect(context.Background(), enum)
		require.NoError(t, err)
		assert.Len(t, records, total)
		assert.Equal(t, "Paper 249", records[total-1].Title)
	})

	t.Run("not found when the edition has no records", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"total_records": 0})
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 0)

		enum, err := client.Enumerate(context.Background(), "ICRA", 2026)
		require.NoError(t, err)

		_, err = sources.Collect(context.Background(), enum)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("auth error without an API key", func(t *testing.T) {
		client := NewAPI(APIConfig{BaseURL: "http://unused.example"})

		_, err := client.Enumerate(context.Background(), "ICRA", 2023)
		assert.ErrorIs(t, err, domain.ErrAuth)
	})

	t.Run("rate limit error on exhausted daily quota", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Developer Over Rate Limit"))
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 0)

		enum, err := client.Enumerate(context.Background(), "ICRA", 2023)
		require.NoError(t, err)

		_, err = sources.Collect(context.Background(), enum)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("budget exhaustion stops enumeration", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("max_records") == "1" {
				json.NewEncoder(w).Encode(map[string]interface{}{"total_records": 1000})
				return
			}
			articles := make([]map[string]interface{}, 0, maxRecords)
			for i := 0; i < maxRecords; i++ {
				articles = append(articles, articleJSON("Paper"))
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"articles": articles})
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 2)

		enum, err := client.Enumerate(context.Background(), "ICRA", 2023)
		require.NoError(t, err)

		records, err := sources.Collect(context.Background(), enum)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBudgetExceeded)
		// The probe and one page fit in the budget.
		assert.Len(t, records, maxRecords)
	})
}

func TestAPIClient_FetchDetail(t *testing.T) {
	t.Run("looks up the article number", func(t *testing.T) {
		var receivedNumber string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedNumber = r.URL.Query().Get("article_number")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total_records": 1,
				"articles":      []map[string]interface{}{articleJSON("Found Paper", "Alan Turing")},
			})
		}))
		defer server.Close()

		client := newTestAPI(server.URL, 0)
		draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/document/9981026/"}

		record, err := client.FetchDetail(context.Background(), draft)
		require.NoError(t, err)

		assert.Equal(t, "9981026", receivedNumber)
		assert.Equal(t, "Found Paper", record.Title)
		assert.Equal(t, []string{"Alan Turing"}, record.Authors)
	})

	t.Run("not found for a URL without an article number", func(t *testing.T) {
		client := newTestAPI("http://unused.example", 0)
		draft := &domain.PaperRecord{URL: "https://ieeexplore.ieee.org/Xplore/home.jsp"}

		_, err := client.FetchDetail(context.Background(), draft)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestExtractArticleNumber(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://ieeexplore.ieee.org/document/9981026/", "9981026"},
		{"https://ieeexplore.ieee.org/abstract/document/726791", "726791"},
		{"https://ieeexplore.ieee.org/Xplore/home.jsp", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractArticleNumber(tt.url))
	}
}
