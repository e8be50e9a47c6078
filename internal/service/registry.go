package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry[T any] struct {
	item     *T
	lastUsed time.Time
}

// registry holds one mounted component instance per session.
type registry[T any] struct {
	mu    sync.Mutex
	items map[uuid.UUID]*registryEntry[T]
	now   func() time.Time
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{
		items: make(map[uuid.UUID]*registryEntry[T]),
		now:   time.Now,
	}
}

// getOrCreate returns the instance for id, mounting it with create on first
// use. create runs without the lock held; if two callers race, the instance
// inserted first wins and the other is discarded.
func (r *registry[T]) getOrCreate(id uuid.UUID, create func() (*T, error)) (*T, error) {
	if item, ok := r.touch(id); ok {
		return item, nil
	}

	item, err := create()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[id]; ok {
		e.lastUsed = r.now()
		return e.item, nil
	}
	r.items[id] = &registryEntry[T]{item: item, lastUsed: r.now()}
	return item, nil
}

func (r *registry[T]) touch(id uuid.UUID) (*T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.item, true
}

func (r *registry[T]) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
}

// sweep unmounts every instance unused for longer than maxIdle and returns
// how many were removed.
func (r *registry[T]) sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, e := range r.items {
		if e.lastUsed.Before(cutoff) {
			delete(r.items, id)
			removed++
		}
	}
	return removed
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
