package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/metrics"
	"github.com/NewsFeedClient/pkg/logging"
)

// watcher gives up on a failing feed after this many consecutive retries
// and waits for the next poll tick instead.
const maxWatchRetries = 3

// Watcher runs a headless feed per watched category and logs articles it
// has not seen before. Retryable failures go back through the feed's
// retry path; repeated failures are sampled down to keep logs quiet.
type Watcher struct {
	news     domain.NewsService
	labels   []string
	interval time.Duration
	sampler  *logging.ErrorSampler

	mu    sync.Mutex
	feeds map[string]*Feed
	seen  map[string]map[string]struct{}
}

func NewWatcher(news domain.NewsService, labels []string, interval time.Duration) *Watcher {
	return &Watcher{
		news:     news,
		labels:   labels,
		interval: interval,
		sampler:  logging.NewErrorSampler(10),
		feeds:    make(map[string]*Feed),
		seen:     make(map[string]map[string]struct{}),
	}
}

// Start creates the category feeds, triggers their first load, and spawns
// the poll loop. It returns immediately.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("Starting news watcher", "categories", w.labels, "interval", w.interval)

	for _, label := range w.labels {
		label := label
		feed := NewFeed(w.news, 0, func(snap Snapshot) { w.observe(label, snap) })

		w.mu.Lock()
		w.feeds[label] = feed
		w.seen[label] = make(map[string]struct{})
		w.mu.Unlock()

		if label == DefaultCategory {
			feed.Fetch()
		} else {
			feed.SetCategory(label)
		}
	}

	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.Lock()
	feeds := make([]*Feed, 0, len(w.feeds))
	for _, feed := range w.feeds {
		feeds = append(feeds, feed)
	}
	w.mu.Unlock()

	for _, feed := range feeds {
		feed.Fetch()
	}
}

// observe consumes feed snapshots. New article identities are logged and
// counted once; error snapshots feed the retry and sampling policies.
func (w *Watcher) observe(label string, snap Snapshot) {
	if snap.Err != nil {
		if snap.IsRetrying {
			// a retry is already scheduled; wait for its outcome
			return
		}
		if shouldLog, count := w.sampler.Observe("watch:" + label); shouldLog {
			slog.Warn("Watched feed failing",
				"category", label, "kind", snap.ErrorKind, "occurrences", count, "error", snap.Err)
		}
		if snap.ErrorKind.Retryable() && snap.RetryCount < maxWatchRetries {
			w.retryFeed(label)
		}
		return
	}
	if snap.Loading || snap.IsRetrying {
		return
	}

	w.sampler.Reset("watch:" + label)

	w.mu.Lock()
	seen := w.seen[label]
	fresh := 0
	for _, a := range snap.Articles {
		id := a.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		fresh++
		slog.Info("New article", "category", label, "title", a.Title, "source", a.Source.Name)
	}
	w.mu.Unlock()

	if fresh > 0 {
		metrics.WatchNewArticles.WithLabelValues(label).Add(float64(fresh))
	}
}

func (w *Watcher) retryFeed(label string) {
	w.mu.Lock()
	feed := w.feeds[label]
	w.mu.Unlock()
	if feed != nil {
		feed.Retry()
	}
}

// Stop closes every watched feed.
func (w *Watcher) Stop() {
	w.mu.Lock()
	feeds := w.feeds
	w.feeds = make(map[string]*Feed)
	w.mu.Unlock()

	for _, feed := range feeds {
		feed.Close()
	}
	slog.Info("News watcher stopped")
}
