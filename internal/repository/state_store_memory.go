package repository

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero means no TTL
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStateStore is the process-local stand-in for browser localStorage.
type memoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStateStore() StateStore {
	return &memoryStateStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *memoryStateStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *memoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

func (s *memoryStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryStateStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.lookup(key)
	return ok, nil
}

// lookup returns a live entry, evicting it if it has expired.
func (s *memoryStateStore) lookup(key string) (memEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)
		return memEntry{}, false
	}
	return entry, true
}
