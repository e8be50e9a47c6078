package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pokeinfo/statehub/internal/model"
)

func newSQLiteStore(t *testing.T) StateStore {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	return NewPGStateStore(db)
}

func newRedisStore(t *testing.T) (StateStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStateStore(client), mr
}

func TestStateStores_Contract(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]StateStore{
		"memory":   NewMemoryStateStore(),
		"redis":    redisStore,
		"postgres": newSQLiteStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			val, err := store.Get(ctx, "name")
			require.NoError(t, err)
			assert.Nil(t, val)

			ok, err := store.Exists(ctx, "name")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "name", []byte(`"Ash"`), 0))
			val, err = store.Get(ctx, "name")
			require.NoError(t, err)
			assert.Equal(t, []byte(`"Ash"`), val)

			// Overwrite
			require.NoError(t, store.Set(ctx, "name", []byte(`"Misty"`), 0))
			val, err = store.Get(ctx, "name")
			require.NoError(t, err)
			assert.Equal(t, []byte(`"Misty"`), val)

			ok, err = store.Exists(ctx, "name")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, store.Delete(ctx, "name"))
			val, err = store.Get(ctx, "name")
			require.NoError(t, err)
			assert.Nil(t, val)

			// Deleting an absent key is not an error
			require.NoError(t, store.Delete(ctx, "name"))
		})
	}
}

func TestMemoryStateStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStateStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPGStateStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}
