// Package persist binds a single in-memory value to an entry of an external
// key/value store: the value is read once when bound and written back on
// every change.
package persist

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pokeinfo/statehub/internal/repository"
)

// Default is the fallback used when the store holds no usable entry.
// Build one with Static or Lazy.
type Default[T any] struct {
	value   T
	produce func() T
}

func Static[T any](v T) Default[T] { return Default[T]{value: v} }

// Lazy defers computing the default until it is actually needed.
func Lazy[T any](produce func() T) Default[T] { return Default[T]{produce: produce} }

func (d Default[T]) resolve() T {
	if d.produce != nil {
		return d.produce()
	}
	return d.value
}

// Read returns the decoded entry at key, or the default. An entry that fails
// to decode is removed from the store. Neither decode nor store errors reach
// the caller; they are logged and the default is used.
func Read[T any](ctx context.Context, store repository.StateStore, key string, def Default[T], codec Codec[T], logger *zap.Logger) T {
	if logger == nil {
		logger = zap.NewNop()
	}
	codec = codec.orDefault()

	raw, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("persisted value read failed", zap.String("key", key), zap.Error(err))
		return def.resolve()
	}
	if len(raw) == 0 {
		return def.resolve()
	}

	v, err := codec.Deserialize(string(raw))
	if err != nil {
		logger.Info("discarding undecodable persisted value", zap.String("key", key), zap.Error(err))
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("failed to purge persisted value", zap.String("key", key), zap.Error(err))
		}
		return def.resolve()
	}
	return v
}

// Write encodes v and commits it under key.
func Write[T any](ctx context.Context, store repository.StateStore, key string, v T, codec Codec[T]) error {
	raw, err := codec.orDefault().Serialize(v)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}
	if err := store.Set(ctx, key, []byte(raw), 0); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Value is a value bound to a store key. After every successful commit the
// entry under the current key holds the current value, and the entry under a
// key the Value was previously bound to has been removed.
type Value[T any] struct {
	mu      sync.Mutex
	store   repository.StateStore
	codec   Codec[T]
	logger  *zap.Logger
	key     string
	prevKey string
	val     T
}

// New reads the initial value for key and commits it straight back, so the
// store reflects the value even when it came from the default.
func New[T any](ctx context.Context, store repository.StateStore, key string, def Default[T], codec Codec[T], logger *zap.Logger) (*Value[T], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Value[T]{
		store:   store,
		codec:   codec.orDefault(),
		logger:  logger,
		key:     key,
		prevKey: key,
	}
	v.val = Read(ctx, store, key, def, v.codec, logger)

	v.mu.Lock()
	defer v.mu.Unlock()
	return v, v.commit(ctx)
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val
}

func (v *Value[T]) Key() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.key
}

// Set replaces the value and commits it.
func (v *Value[T]) Set(ctx context.Context, val T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.val = val
	return v.commit(ctx)
}

// SetKey rebinds the value to a new key. The entry under the old key is
// removed before the value is written under the new one.
func (v *Value[T]) SetKey(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.key = key
	return v.commit(ctx)
}

// commit must be called with mu held.
func (v *Value[T]) commit(ctx context.Context) error {
	if v.prevKey != v.key {
		if err := v.store.Delete(ctx, v.prevKey); err != nil {
			return fmt.Errorf("remove stale key %s: %w", v.prevKey, err)
		}
		v.logger.Debug("persisted value rekeyed", zap.String("from", v.prevKey), zap.String("to", v.key))
	}
	v.prevKey = v.key
	return Write(ctx, v.store, v.key, v.val, v.codec)
}
