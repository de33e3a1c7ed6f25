package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/cache"
	"github.com/NewsFeedClient/internal/infra/metrics"
)

// NewsService routes news lookups through the cache: valid cached pages
// are served directly, concurrent fetches for the same query collapse
// into one upstream request, and a successful response is stored only
// when the caller asked for cache use.
type NewsService struct {
	provider domain.Provider
	store    *cache.Store
	timeout  time.Duration
}

func NewNewsService(provider domain.Provider, store *cache.Store, timeout time.Duration) *NewsService {
	return &NewsService{
		provider: provider,
		store:    store,
		timeout:  timeout,
	}
}

func (s *NewsService) FetchNews(ctx context.Context, opts domain.FetchOptions) (*domain.NewsPage, error) {
	tr := otel.Tracer("news-service")
	ctx, span := tr.Start(ctx, "FetchNews")
	defer span.End()

	query := opts.FeedQuery()
	key := query.CacheKey()
	span.SetAttributes(
		attribute.String("news.key", key),
		attribute.Bool("news.use_cache", opts.UseCache),
	)

	if removed := s.store.SweepExpired(); removed > 0 {
		slog.Debug("Swept expired cache entries", "removed", removed)
	}

	if opts.UseCache {
		if page, ok := s.store.Get(key); ok {
			slog.Debug("Cache hit", "key", key, "articles", len(page.Articles))
			span.SetAttributes(attribute.Bool("news.cache_hit", true))
			return page, nil
		}
	}

	start := time.Now()
	page, err := s.store.Join(ctx, key, func() (*domain.NewsPage, error) {
		// This call is shared by every coalesced waiter, so it must not
		// die with whichever caller happened to initiate it. Detach from
		// the initiator's cancellation and bound it with its own timeout.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		fresh, ferr := s.provider.FetchNews(fctx, query)
		if ferr != nil {
			return nil, ferr
		}
		if opts.UseCache {
			s.store.Set(key, fresh)
		}
		return fresh, nil
	})
	metrics.FetchDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := domain.ClassifyError(err)
		span.RecordError(err)
		metrics.FetchesTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		metrics.FetchErrors.WithLabelValues(s.provider.Name(), string(kind)).Inc()
		slog.Error("News fetch failed", "key", key, "kind", kind, "error", err)
		return nil, err
	}

	metrics.FetchesTotal.WithLabelValues(s.provider.Name(), "success").Inc()
	slog.Debug("News fetch completed", "key", key, "articles", len(page.Articles), "from_cache", page.FromCache)
	return page, nil
}

// Cached returns the cached page for a query without touching the
// upstream.
func (s *NewsService) Cached(query domain.FeedQuery) (*domain.NewsPage, bool) {
	return s.store.Get(query.CacheKey())
}

func (s *NewsService) ClearCache() {
	s.store.Clear()
	slog.Info("News cache cleared")
}

func (s *NewsService) CacheStats() domain.CacheStats {
	return s.store.Stats()
}
