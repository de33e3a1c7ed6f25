package factory

import (
	"errors"
	"log/slog"
	"time"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/newsapi"
	"github.com/NewsFeedClient/pkg/config"
)

// mockLatency approximates a round trip so the loading states stay
// observable in development.
const mockLatency = 200 * time.Millisecond

// NewProvider creates the configured news provider: the HTTP client
// against the real backend, or the canned offline one.
func NewProvider(cfg *config.Config) (domain.Provider, error) {
	if cfg.UseMockNews {
		slog.Info("Registered provider", "provider", "mock")
		return newsapi.NewMockProvider(mockLatency), nil
	}

	if cfg.NewsAPIURL == "" {
		return nil, errors.New("news API URL not configured")
	}
	slog.Info("Registered provider", "provider", "newsapi", "url", cfg.NewsAPIURL)
	return newsapi.NewClient(cfg), nil
}
