package pokeapi

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"pokeinfo/statehub/internal/fetchstate"
	"pokeinfo/statehub/internal/model"
	"pokeinfo/statehub/internal/repository"
)

// CachedSource remembers successful lookups in a StateStore for ttl.
// Failures are never cached.
type CachedSource struct {
	next   fetchstate.Source[model.Pokemon]
	store  repository.StateStore
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(next fetchstate.Source[model.Pokemon], store repository.StateStore, prefix string, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, store: store, prefix: prefix, ttl: ttl, logger: logger}
}

func (s *CachedSource) cacheKey(name string) string {
	return s.prefix + ":pokemon:" + strings.ToLower(name)
}

func (s *CachedSource) FetchByKey(ctx context.Context, name string) (model.Pokemon, error) {
	key := s.cacheKey(name)

	if raw, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("pokemon cache read failed", zap.String("key", key), zap.Error(err))
	} else if len(raw) > 0 {
		var p model.Pokemon
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		s.logger.Info("discarding undecodable cached pokemon", zap.String("key", key))
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("pokemon cache purge failed", zap.String("key", key), zap.Error(err))
		}
	}

	p, err := s.next.FetchByKey(ctx, name)
	if err != nil {
		return model.Pokemon{}, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("pokemon cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}
