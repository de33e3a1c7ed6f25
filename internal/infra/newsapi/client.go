// Package newsapi implements the news provider backed by the upstream
// news HTTP API, plus an offline mock used for development.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/pkg/config"
)

// APIError carries the upstream status code alongside a human-readable
// message. The message wording drives error classification, so each status
// maps to a stable phrase.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

type newsResponse struct {
	Success bool            `json:"success"`
	Data    domain.NewsPage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// Client fetches news pages from the upstream API. Calls go through a
// rate limiter and a circuit breaker; retries are left to the caller so
// coalesced fetches stay a single upstream request.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	categories *config.Categories
	client     *http.Client
	cb         *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	cbSettings := gobreaker.Settings{
		Name:        "newsapi",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip only on a sustained outage, not a single failed fetch
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("CircuitBreaker state changed", "name", name, "from", from, "to", to)
		},
	}

	limit := rate.Inf
	if cfg.RequestRate > 0 {
		limit = rate.Limit(cfg.RequestRate)
	}
	burst := cfg.RequestBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		name:       "newsapi",
		baseURL:    strings.TrimRight(cfg.NewsAPIURL, "/"),
		apiKey:     cfg.NewsAPIKey,
		categories: cfg.Categories,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cb:      gobreaker.NewCircuitBreaker(cbSettings),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) FetchNews(ctx context.Context, query domain.FeedQuery) (*domain.NewsPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("cannot connect to the news service: %w", err)
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, c.buildURL(query))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("news service unavailable, requests suspended: %w", err)
		}
		return nil, err
	}
	return result.(*domain.NewsPage), nil
}

// buildURL maps the category label to its API slug and omits empty
// filters entirely: the "all" category and a blank query send no
// parameter at all.
func (c *Client) buildURL(query domain.FeedQuery) string {
	params := url.Values{}
	slug := c.categories.Slug(query.Category)
	if slug != "" && slug != domain.CategoryAll {
		params.Set("category", slug)
	}
	if term := strings.TrimSpace(query.Query); term != "" {
		params.Set("q", term)
	}

	u := c.baseURL + "/news"
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func (c *Client) fetch(ctx context.Context, fetchURL string) (*domain.NewsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the news service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "authentication failed, check the API key"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "rate limit exceeded, please slow down"}
	case resp.StatusCode >= 500:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "news service unavailable, please try again later"}
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected response from news service: %d", resp.StatusCode)}
	}

	var envelope newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "news service returned an unsuccessful response"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	page := envelope.Data
	if page.Articles == nil {
		page.Articles = []domain.Article{}
	}
	return &page, nil
}
