package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/pkg/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Load()
	cfg.NewsAPIURL = baseURL
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func TestFetchNewsSuccess(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"articles": [
					{"id": "a1", "title": "Go 1.24 Released", "url": "https://example.com/1", "source": {"id": "wire", "name": "Wire"}},
					{"id": "a2", "title": "Golang at Scale", "url": "https://example.com/2", "source": {"id": "wire", "name": "Wire"}}
				],
				"totalResults": 2,
				"page": 1,
				"pageSize": 20
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	page, err := client.FetchNews(context.Background(), domain.FeedQuery{Category: "Technology", Query: " golang "})

	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalResults)
	assert.Len(t, page.Articles, 2)
	assert.False(t, page.FromCache)
	assert.Equal(t, "Go 1.24 Released", page.Articles[0].Title)

	// label mapped to slug, query trimmed
	assert.Equal(t, "category=technology&q=golang", gotQuery.Load())
}

func TestFetchNewsOmitsEmptyFilters(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"success": true, "data": {"articles": [], "totalResults": 0, "page": 1, "pageSize": 20}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	page, err := client.FetchNews(context.Background(), domain.FeedQuery{Category: "All", Query: "   "})

	require.NoError(t, err)
	assert.Equal(t, "", gotQuery.Load(), "the all category and a blank query should send no parameters")
	require.NotNil(t, page.Articles)
	assert.Empty(t, page.Articles)
}

func TestFetchNewsStatusClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantKind    domain.ErrorKind
		wantMessage string
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrKindAuth, "authentication failed"},
		{"forbidden", http.StatusForbidden, domain.ErrKindAuth, "authentication failed"},
		{"rate limited", http.StatusTooManyRequests, domain.ErrKindRateLimit, "rate limit exceeded"},
		{"server error", http.StatusInternalServerError, domain.ErrKindServer, "news service unavailable"},
		{"bad gateway", http.StatusBadGateway, domain.ErrKindServer, "news service unavailable"},
		{"teapot", http.StatusTeapot, domain.ErrKindUnknown, "unexpected response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			_, err := client.FetchNews(context.Background(), domain.FeedQuery{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMessage)
			assert.Equal(t, tt.wantKind, domain.ClassifyError(err))
		})
	}
}

func TestFetchNewsEnvelopeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "rate limit exceeded, please slow down"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.FetchNews(context.Background(), domain.FeedQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Equal(t, domain.ErrKindRateLimit, domain.ClassifyError(err))
}

func TestFetchNewsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.FetchNews(context.Background(), domain.FeedQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode news response")
}

func TestFetchNewsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(testConfig(baseURL))
	_, err := client.FetchNews(context.Background(), domain.FeedQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot connect to the news service")
	assert.Equal(t, domain.ErrKindNetwork, domain.ClassifyError(err))
}

func TestCircuitBreakerOpensAfterSustainedFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	for i := 0; i < 5; i++ {
		_, err := client.FetchNews(context.Background(), domain.FeedQuery{})
		require.Error(t, err)
	}
	assert.EqualValues(t, 5, atomic.LoadInt32(&hits))

	// breaker is open now; the upstream must not see another request
	_, err := client.FetchNews(context.Background(), domain.FeedQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "news service unavailable")
	assert.Equal(t, domain.ErrKindServer, domain.ClassifyError(err))
	assert.EqualValues(t, 5, atomic.LoadInt32(&hits))
}

func TestFetchNewsSendsAPIKey(t *testing.T) {
	var gotKey atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{"success": true, "data": {"articles": [], "totalResults": 0, "page": 1, "pageSize": 20}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.NewsAPIKey = "test-key-123"
	client := NewClient(cfg)

	_, err := client.FetchNews(context.Background(), domain.FeedQuery{Category: "All"})
	require.NoError(t, err)
	assert.Equal(t, "test-key-123", gotKey.Load())
}
