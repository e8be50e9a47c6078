package repository

import (
	"context"
	"time"
)

// StateStore is the external key/value store persisted values are bound to.
// Get returns (nil, nil) for an absent or expired key.
// Implementations: in-memory (local dev, tests), Redis, PostgreSQL.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
