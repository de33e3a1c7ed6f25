package factory

import (
	"errors"
	"fmt"

	"github.com/NewsFeedClient/internal/app"
	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/cache"
	"github.com/NewsFeedClient/pkg/config"
)

// NewNewsService creates the cached news service with validation.
func NewNewsService(provider domain.Provider, store *cache.Store, cfg *config.Config) (domain.NewsService, error) {
	if provider == nil {
		return nil, errors.New("provider is nil")
	}
	if store == nil {
		return nil, errors.New("cache store is nil")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("invalid request timeout: %s", cfg.RequestTimeout)
	}
	return app.NewNewsService(provider, store, cfg.RequestTimeout), nil
}

// NewWatcher creates the category watcher.
func NewWatcher(news domain.NewsService, cfg *config.Config) (*app.Watcher, error) {
	if news == nil {
		return nil, errors.New("news service is nil")
	}
	if len(cfg.WatchCategories) == 0 {
		return nil, errors.New("no watch categories configured")
	}
	if cfg.WatchInterval <= 0 {
		return nil, fmt.Errorf("invalid watch interval: %s", cfg.WatchInterval)
	}
	return app.NewWatcher(news, cfg.WatchCategories, cfg.WatchInterval), nil
}
