// Package cache provides the in-memory TTL cache and request coalescing
// used by the news service.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/metrics"
)

type entry struct {
	page     *domain.NewsPage
	storedAt time.Time
}

// Store keeps news pages keyed by normalized feed query. Entries expire a
// fixed TTL after they were stored and are evicted lazily on read or in
// bulk by SweepExpired. Concurrent fetches for the same key are coalesced
// by Join so the upstream sees a single request.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	fmu     sync.Mutex
	waiters map[string]int
	flight  singleflight.Group
}

func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		waiters: make(map[string]int),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached page for key if present and not expired. The
// returned page is a copy with FromCache set so callers can tell cached
// results apart from fresh ones. Expired entries are evicted on the spot.
func (s *Store) Get(key string) (*domain.NewsPage, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if s.expired(e, s.now()) {
		s.mu.Lock()
		// Re-check: a fresh Set may have replaced the entry meanwhile.
		if cur, ok := s.entries[key]; ok && s.expired(cur, s.now()) {
			delete(s.entries, key)
			metrics.CacheEvictions.Inc()
			metrics.CacheEntries.Set(float64(len(s.entries)))
		}
		s.mu.Unlock()
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	page := *e.page
	page.FromCache = true
	return &page, true
}

// Has reports whether a valid entry exists for key without counting a hit
// or a miss.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return ok && !s.expired(e, s.now())
}

// Set stores a page under key, resetting its TTL. The page is copied so
// later mutation by the caller cannot reach the cache.
func (s *Store) Set(key string, page *domain.NewsPage) {
	p := *page
	p.FromCache = false

	s.mu.Lock()
	s.entries[key] = entry{page: &p, storedAt: s.now()}
	metrics.CacheEntries.Set(float64(len(s.entries)))
	s.mu.Unlock()
}

// SweepExpired removes every expired entry and returns how many were
// dropped.
func (s *Store) SweepExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
			removed++
		}
	}
	if removed > 0 {
		metrics.CacheEvictions.Add(float64(removed))
		metrics.CacheEntries.Set(float64(len(s.entries)))
	}
	return removed
}

// ClearKey drops the entry for a single key, if present.
func (s *Store) ClearKey(key string) {
	s.mu.Lock()
	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		metrics.CacheEntries.Set(float64(len(s.entries)))
	}
	s.mu.Unlock()
}

// Clear drops all cached entries and detaches in-flight fetches from
// their keys. Detached fetches still complete for their current waiters,
// but new callers start fresh requests.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	metrics.CacheEntries.Set(0)
	s.mu.Unlock()

	s.fmu.Lock()
	for key := range s.waiters {
		s.flight.Forget(key)
	}
	s.fmu.Unlock()
}

// Join runs fn for key, coalescing concurrent callers onto a single
// execution. Every caller receives the same page and error. The slot is
// freed as soon as fn returns, so a failed fetch never blocks retries.
// A caller whose ctx ends stops waiting, but the shared execution keeps
// running for the remaining waiters.
func (s *Store) Join(ctx context.Context, key string, fn func() (*domain.NewsPage, error)) (*domain.NewsPage, error) {
	s.fmu.Lock()
	joining := s.waiters[key] > 0
	s.waiters[key]++
	s.fmu.Unlock()
	if joining {
		metrics.InflightJoins.Inc()
	}
	defer func() {
		s.fmu.Lock()
		if s.waiters[key] <= 1 {
			delete(s.waiters, key)
		} else {
			s.waiters[key]--
		}
		s.fmu.Unlock()
	}()

	ch := s.flight.DoChan(key, func() (interface{}, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch abandoned: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.NewsPage), nil
	}
}

// Stats summarizes cache occupancy and in-flight activity.
func (s *Store) Stats() domain.CacheStats {
	now := s.now()

	s.mu.RLock()
	total := len(s.entries)
	valid := 0
	for _, e := range s.entries {
		if !s.expired(e, now) {
			valid++
		}
	}
	s.mu.RUnlock()

	s.fmu.Lock()
	ongoing := len(s.waiters)
	s.fmu.Unlock()

	return domain.CacheStats{
		TotalEntries:    total,
		ValidEntries:    valid,
		ExpiredEntries:  total - valid,
		OngoingRequests: ongoing,
	}
}

func (s *Store) expired(e entry, now time.Time) bool {
	return now.Sub(e.storedAt) >= s.ttl
}
