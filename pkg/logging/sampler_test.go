package logging

import (
	"testing"
)

func TestErrorSampler(t *testing.T) {
	sampler := NewErrorSampler(10)

	// First occurrence should be logged
	if log, count := sampler.Observe("fetch_error"); !log || count != 1 {
		t.Errorf("First occurrence should be logged with count 1, got log=%v count=%d", log, count)
	}

	// Occurrences 2-9 should not be logged
	for i := 2; i <= 9; i++ {
		if log, _ := sampler.Observe("fetch_error"); log {
			t.Errorf("Occurrence %d should not be logged", i)
		}
	}

	// 10th occurrence should be logged
	if log, count := sampler.Observe("fetch_error"); !log || count != 10 {
		t.Errorf("10th occurrence should be logged with count 10, got log=%v count=%d", log, count)
	}
}

func TestErrorSamplerResetUnsilences(t *testing.T) {
	sampler := NewErrorSampler(5)

	sampler.Observe("news:all:")
	if log, _ := sampler.Observe("news:all:"); log {
		t.Error("Second occurrence should not be logged")
	}

	sampler.Reset("news:all:")
	if sampler.Count("news:all:") != 0 {
		t.Error("Count should be 0 after reset")
	}
	if log, count := sampler.Observe("news:all:"); !log || count != 1 {
		t.Error("Occurrence after reset should be logged as a first occurrence")
	}
}

func TestErrorSamplerMultipleKeys(t *testing.T) {
	sampler := NewErrorSampler(5)

	// Different feeds are tracked independently
	sampler.Observe("news:technology:")
	sampler.Observe("news:sports:")

	if sampler.Count("news:technology:") != 1 {
		t.Error("technology count should be 1")
	}
	if sampler.Count("news:sports:") != 1 {
		t.Error("sports count should be 1")
	}
}
