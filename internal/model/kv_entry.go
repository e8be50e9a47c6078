package model

import "time"

// KVEntry backs the postgres StateStore. One row per persisted key.
type KVEntry struct {
	Key       string     `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value     []byte     `gorm:"type:bytea;not null" json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }

func (e KVEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
