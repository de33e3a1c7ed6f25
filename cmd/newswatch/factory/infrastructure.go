// Package factory provides dependency injection constructors for the
// watcher binary.
package factory

import (
	"errors"

	"github.com/NewsFeedClient/internal/infra/cache"
	"github.com/NewsFeedClient/pkg/config"
)

// NewCacheStore creates the TTL cache shared by the news service and the
// debug endpoints.
func NewCacheStore(cfg *config.Config) (*cache.Store, error) {
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("cache TTL must be positive")
	}
	return cache.New(cfg.CacheTTL), nil
}
