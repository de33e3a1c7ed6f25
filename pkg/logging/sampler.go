package logging

import (
	"sync"
)

// ErrorSampler reduces log noise from errors that repeat on every poll.
// The first occurrence is logged, then every Nth occurrence.
type ErrorSampler struct {
	mu       sync.Mutex
	counts   map[string]int
	interval int
}

// NewErrorSampler creates a sampler that logs every Nth occurrence
// (interval 10 means the 1st, 10th, 20th, ... are logged).
func NewErrorSampler(interval int) *ErrorSampler {
	if interval < 1 {
		interval = 10
	}
	return &ErrorSampler{
		counts:   make(map[string]int),
		interval: interval,
	}
}

// Observe records one occurrence under the given key and reports whether
// this occurrence should be logged, along with the running count.
func (s *ErrorSampler) Observe(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[key]++
	count := s.counts[key]
	return count == 1 || count%s.interval == 0, count
}

// Count returns the running count for a key.
func (s *ErrorSampler) Count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

// Reset clears the count for a key so its next occurrence logs again.
// Called after a success to un-silence the error.
func (s *ErrorSampler) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
}
