package domain

import (
	"context"
	"fmt"
	"strings"
)

// CategoryAll is the sentinel category meaning "no category filter". It is
// never sent upstream as a query parameter.
const CategoryAll = "all"

// FeedQuery identifies one news request: a display category and a free-text
// search term.
type FeedQuery struct {
	Category string
	Query    string
}

// CacheKey returns the normalized identity of the query, shared by the cache
// and the in-flight request tracker. Queries differing only in letter case,
// or in whitespace around the search term, map to the same key.
func (q FeedQuery) CacheKey() string {
	category := strings.ToLower(q.Category)
	if category == "" {
		category = CategoryAll
	}
	term := strings.ToLower(strings.TrimSpace(q.Query))
	return fmt.Sprintf("news:%s:%s", category, term)
}

// FetchOptions controls one orchestrated fetch.
type FetchOptions struct {
	Category string
	Query    string

	// UseCache lets a valid cached page satisfy the request and the
	// fresh response be stored for later ones. When false the request
	// always goes upstream and bypasses the cache in both directions.
	UseCache bool
}

// FeedQuery returns the query identity of the options.
func (o FetchOptions) FeedQuery() FeedQuery {
	return FeedQuery{Category: o.Category, Query: o.Query}
}

// Provider performs the actual upstream request for one page of news.
// Implementations must honor ctx and must not cache: failed calls are the
// orchestrator's to classify and the store's to forget.
type Provider interface {
	FetchNews(ctx context.Context, query FeedQuery) (*NewsPage, error)
	Name() string
}

// NewsService is the cached, deduplicated fetch surface feeds consume.
type NewsService interface {
	// FetchNews resolves a query through the cache, the in-flight tracker
	// and finally the provider, per the options.
	FetchNews(ctx context.Context, opts FetchOptions) (*NewsPage, error)

	// Cached returns the valid cached page for the query, if any, without
	// touching the network. Used for optimistic display on parameter
	// changes.
	Cached(query FeedQuery) (*NewsPage, bool)

	// ClearCache drops every cached page and in-flight registration.
	ClearCache()

	// CacheStats reports a diagnostic snapshot of the store.
	CacheStats() CacheStats
}

// CacheStats is a point-in-time view of the cache/dedup store.
type CacheStats struct {
	TotalEntries    int `json:"totalEntries"`
	ValidEntries    int `json:"validEntries"`
	ExpiredEntries  int `json:"expiredEntries"`
	OngoingRequests int `json:"ongoingRequests"`
}
