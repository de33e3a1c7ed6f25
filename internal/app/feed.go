package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/metrics"
	"github.com/NewsFeedClient/pkg/debounce"
)

// DefaultCategory is the label selected when a feed starts.
const DefaultCategory = "All"

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseLoaded
	phaseRetrying
	phaseFailed
)

// Snapshot is a point-in-time view of the feed for consumers to render.
// Articles and Err can both be set at once: after a failed retry the
// previously loaded articles stay visible alongside the error.
type Snapshot struct {
	Articles         []domain.Article
	Loading          bool
	Err              error
	ErrorKind        domain.ErrorKind
	RetryCount       int
	IsRetrying       bool
	IsSearching      bool
	FromCache        bool
	SelectedCategory string
	SearchQuery      string
}

// Feed drives one news view: it owns the selected category, the debounced
// search term, and the load/retry lifecycle. Results are applied in issue
// order; a response that arrives after a newer fetch was issued is
// discarded, so the latest request always wins.
type Feed struct {
	news   domain.NewsService
	search *debounce.Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	phase          phase
	articles       []domain.Article
	err            error
	errKind        domain.ErrorKind
	retryCount     int
	category       string
	fromCache      bool
	seq            uint64
	cancelFetch    context.CancelFunc
	retryTimer     *time.Timer
	deferredSwitch bool
	closed         bool

	onUpdate func(Snapshot)
}

// NewFeed creates an idle feed. onUpdate, if non-nil, is called after
// every visible state change with a fresh snapshot; it must not block.
// Nothing is fetched until Fetch, SetCategory, or a settled search term
// asks for it.
func NewFeed(news domain.NewsService, debounceDelay time.Duration, onUpdate func(Snapshot)) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feed{
		news:     news,
		ctx:      ctx,
		cancel:   cancel,
		category: DefaultCategory,
		onUpdate: onUpdate,
	}
	f.search = debounce.New(debounceDelay, func(string) { f.Fetch() })
	return f
}

// Fetch loads the feed for the current category and settled search term,
// serving straight from the cache when it holds a valid page.
func (f *Feed) Fetch() {
	f.fetch(true, false)
}

// Retry re-issues the last failed fetch. Consecutive rate-limit retries
// back off exponentially; the first retry and every other retryable kind
// go immediately. Auth errors are never retried.
func (f *Feed) Retry() {
	f.mu.Lock()
	if f.closed || f.err == nil || f.phase == phaseRetrying || !f.errKind.Retryable() {
		f.mu.Unlock()
		return
	}
	f.retryCount++
	attempt := f.retryCount
	kind := f.errKind
	delay := retryDelay(kind, attempt)
	f.phase = phaseRetrying
	scheduledSeq := f.seq
	f.mu.Unlock()

	metrics.FeedRetries.WithLabelValues(string(kind)).Inc()
	slog.Info("Retry scheduled", "kind", kind, "attempt", attempt, "delay", delay)
	f.notify()

	if delay == 0 {
		f.retryIfCurrent(scheduledSeq)
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.retryTimer = time.AfterFunc(delay, func() { f.retryIfCurrent(scheduledSeq) })
	f.mu.Unlock()
}

// retryIfCurrent runs the retry fetch unless a newer fetch superseded it
// while it was waiting.
func (f *Feed) retryIfCurrent(scheduledSeq uint64) {
	f.mu.Lock()
	superseded := f.closed || f.seq != scheduledSeq
	f.mu.Unlock()
	if superseded {
		return
	}
	f.fetch(true, true)
}

// Refresh drops every cached page and fetches the current parameters
// fresh from the upstream.
func (f *Feed) Refresh() {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return
	}
	f.news.ClearCache()
	f.fetch(false, false)
}

// SetCategory switches the feed to a category label and fetches it.
// Selecting the current category is a no-op. While a search edit is
// still settling the switch only records the label; the fetch for the
// new pair is owed to whatever closes the window.
func (f *Feed) SetCategory(label string) {
	f.mu.Lock()
	if f.closed || label == f.category {
		f.mu.Unlock()
		return
	}
	f.category = label
	if f.search.Pending() {
		f.deferredSwitch = true
		f.mu.Unlock()
		f.notify()
		return
	}
	f.mu.Unlock()
	f.fetch(true, false)
}

// SetSearch records raw search input. The fetch fires only once the term
// has settled through the debouncer.
func (f *Feed) SetSearch(text string) {
	f.mu.Lock()
	if f.closed || text == f.search.Input() {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.search.Set(text)

	// Erasing back to the settled term closes the window with nothing
	// to publish; a category switch deferred into it fetches now.
	if !f.search.Pending() {
		f.mu.Lock()
		owed := f.deferredSwitch
		f.mu.Unlock()
		if owed {
			f.fetch(true, false)
			return
		}
	}
	f.notify()
}

func (f *Feed) ClearCache() {
	f.news.ClearCache()
}

func (f *Feed) CacheStats() domain.CacheStats {
	return f.news.CacheStats()
}

// Snapshot returns the current visible state. The articles slice is
// copied so consumers can hold it across updates.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	snap := Snapshot{
		Articles:         append([]domain.Article(nil), f.articles...),
		Loading:          f.phase == phaseLoading,
		Err:              f.err,
		ErrorKind:        f.errKind,
		RetryCount:       f.retryCount,
		IsRetrying:       f.phase == phaseRetrying,
		FromCache:        f.fromCache,
		SelectedCategory: f.category,
	}
	f.mu.Unlock()

	snap.SearchQuery = f.search.Input()
	snap.IsSearching = f.search.Pending()
	return snap
}

// Close tears the feed down: pending debounce and backoff timers are
// stopped and any in-flight fetch result is ignored on arrival.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.retryTimer != nil {
		f.retryTimer.Stop()
		f.retryTimer = nil
	}
	if f.cancelFetch != nil {
		f.cancelFetch()
		f.cancelFetch = nil
	}
	f.mu.Unlock()

	f.search.Stop()
	f.cancel()
	slog.Debug("Feed closed")
}

// fetch issues a load for the current parameters, superseding whatever
// was previously scheduled or in flight.
func (f *Feed) fetch(useCache, isRetry bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.seq++
	seq := f.seq
	f.deferredSwitch = false

	if f.retryTimer != nil {
		f.retryTimer.Stop()
		f.retryTimer = nil
	}
	if f.cancelFetch != nil {
		// Abort the superseded transport call; correctness comes from the
		// sequence check, this just stops wasted work.
		f.cancelFetch()
		f.cancelFetch = nil
	}

	query := domain.FeedQuery{Category: f.category, Query: f.search.Value()}

	if useCache {
		if page, ok := f.news.Cached(query); ok {
			f.applyPage(page)
			f.mu.Unlock()
			f.notify()
			return
		}
	}

	ctx, cancel := context.WithCancel(f.ctx)
	f.cancelFetch = cancel
	if isRetry {
		f.phase = phaseRetrying
	} else {
		f.phase = phaseLoading
	}
	f.err = nil
	f.errKind = ""
	f.mu.Unlock()
	f.notify()

	go f.run(ctx, seq, query, useCache, isRetry)
}

func (f *Feed) run(ctx context.Context, seq uint64, query domain.FeedQuery, useCache, isRetry bool) {
	page, err := f.news.FetchNews(ctx, domain.FetchOptions{
		Category: query.Category,
		Query:    query.Query,
		UseCache: useCache,
	})

	f.mu.Lock()
	if f.closed || seq != f.seq {
		f.mu.Unlock()
		slog.Debug("Discarding stale fetch result", "seq", seq, "latest", f.seq)
		return
	}

	if err != nil {
		f.err = err
		f.errKind = domain.ClassifyError(err)
		f.phase = phaseFailed
		// keep what the user is reading only when a retry failed over it
		if !(isRetry && len(f.articles) > 0) {
			f.articles = nil
			f.fromCache = false
		}
		f.mu.Unlock()
		f.notify()
		return
	}

	f.applyPage(page)
	f.mu.Unlock()
	f.notify()
}

// applyPage records a successful result. Callers hold f.mu.
func (f *Feed) applyPage(page *domain.NewsPage) {
	f.articles = page.Articles
	f.fromCache = page.FromCache
	f.phase = phaseLoaded
	f.err = nil
	f.errKind = ""
	f.retryCount = 0
}

func (f *Feed) notify() {
	if f.onUpdate == nil {
		return
	}
	f.onUpdate(f.Snapshot())
}

// retryDelay computes the wait before retry number n (1-based). Only
// consecutive rate-limit retries back off: 0, 1s, 2s, 4s, ... capped at
// 30s. Everything else retries immediately.
func retryDelay(kind domain.ErrorKind, n int) time.Duration {
	if kind != domain.ErrKindRateLimit || n <= 1 {
		return 0
	}
	if n-2 >= 6 {
		// 1s << 6 already exceeds the cap
		return 30 * time.Second
	}
	d := time.Second << uint(n-2)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
