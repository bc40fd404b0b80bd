package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a thread-safe TTL cache. Collectors use it to avoid re-probing
// the same address within a short window (avatar lookups and service
// presence results are keyed by normalized email).
type Store struct {
	mu    sync.RWMutex
	items map[string]item
}

type item struct {
	value      interface{}
	expiration int64
}

func New() *Store {
	return &Store{items: make(map[string]item)}
}

// Set stores a value with the given TTL.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	}
}

// Get returns the value and whether it exists and is unexpired.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, found := s.items[key]
	if !found || time.Now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.value, true
}

// Cleanup removes expired entries.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixNano()
	for k, v := range s.items {
		if now > v.expiration {
			delete(s.items, k)
		}
	}
}

// StartCleanup launches a goroutine that evicts expired entries every
// interval until ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
