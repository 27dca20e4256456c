package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore keeps windows in process memory. Good enough for a single
// gateway instance and for tests; clustered deployments need the redis
// store so all instances see one counter.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
	go s.cleanup()
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, windowDur time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		s.windows[key] = &window{count: 1, expiresAt: now.Add(windowDur)}
		return 1, nil
	}

	w.count++
	return w.count, nil
}

func (s *MemoryStore) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		s.mu.Lock()
		now := s.now()
		for k, w := range s.windows {
			if now.After(w.expiresAt) {
				delete(s.windows, k)
			}
		}
		s.mu.Unlock()
	}
}
