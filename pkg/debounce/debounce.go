// Package debounce delays propagation of a changing value until it has
// stopped changing for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds a raw input value and a settled value. Each Set restarts
// the timer, so only the last value written before a quiet period of the
// configured delay is published. Values equal to the already settled value
// do not re-publish.
type Debouncer[T comparable] struct {
	mu      sync.Mutex
	delay   time.Duration
	input   T
	settled T
	timer   *time.Timer
	notify  func(T)
	stopped bool
}

// New returns a debouncer that calls notify with each newly settled value.
// notify may be nil. A zero delay still settles asynchronously, never
// inside Set itself.
func New[T comparable](delay time.Duration, notify func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, notify: notify}
}

// Set records a new input value and schedules it to settle after the delay,
// cancelling any previously scheduled settle.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.input = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.settle(value) })
}

func (d *Debouncer[T]) settle(value T) {
	d.mu.Lock()
	if d.stopped || d.input != value || d.settled == value {
		// Superseded by a newer Set, cancelled, or already settled here.
		d.mu.Unlock()
		return
	}
	d.settled = value
	notify := d.notify
	d.mu.Unlock()
	if notify != nil {
		notify(value)
	}
}

// Value returns the last settled value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Input returns the most recently set value, settled or not.
func (d *Debouncer[T]) Input() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Pending reports whether an input is still waiting to settle.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input != d.settled
}

// Stop cancels any scheduled settle and rejects further Sets.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
