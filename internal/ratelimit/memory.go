package ratelimit

import (
	"sync"
	"time"
)

// MemoryStore is the in-process Store: a mutex-guarded map of per-key
// windows. Suitable for a single server; counts are lost on restart, which
// for rate limiting just means a fresh window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowCount
	stop    chan struct{}
}

type windowCount struct {
	start time.Time
	count int
}

// NewMemoryStore creates a MemoryStore and starts its janitor goroutine,
// which drops stale windows so the map doesn't grow with every IP ever
// seen. Call Close when done with it.
func NewMemoryStore(sweep time.Duration) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*windowCount),
		stop:    make(chan struct{}),
	}
	go s.janitor(sweep)
	return s
}

// Incr implements Store.
func (s *MemoryStore) Incr(key string, window time.Duration) (int, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= window {
		w = &windowCount{start: now, count: 0}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() {
	close(s.stop)
}

func (s *MemoryStore) janitor(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(sweep)
		}
	}
}

// sweep drops windows older than maxAge. Entries still inside their window
// survive; Incr resets expired ones lazily anyway, so the janitor only
// bounds memory.
func (s *MemoryStore) sweep(maxAge time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		if now.Sub(w.start) >= maxAge {
			delete(s.windows, key)
		}
	}
}
