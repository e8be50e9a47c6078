package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pokeinfo/statehub/internal/model"
)

type pgStateStore struct {
	db *gorm.DB
}

// NewPGStateStore stores entries in the kv_entries table. The table must
// already exist (see model.AutoMigrate).
func NewPGStateStore(db *gorm.DB) StateStore {
	return &pgStateStore{db: db}
}

func (s *pgStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := model.KVEntry{Key: key, Value: value}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		entry.ExpiresAt = &exp
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *pgStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.find(ctx, key)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *pgStateStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *pgStateStore) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := s.find(ctx, key)
	return entry != nil, err
}

// find uses Find rather than First so a missing key is not logged as an error.
// Expired rows are removed lazily.
func (s *pgStateStore) find(ctx context.Context, key string) (*model.KVEntry, error) {
	var entry model.KVEntry
	result := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&entry)
	if result.Error != nil {
		return nil, fmt.Errorf("get %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	if entry.Expired(time.Now()) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &entry, nil
}
