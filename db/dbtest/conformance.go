// Package dbtest holds the behaviour every KVStore implementation has to share.
package dbtest

import (
	"context"
	"sync"
	"testing"

	appDb "github.com/navbryce/feed-be/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func RunConformance(t *testing.T, newStore func(t *testing.T) appDb.KVStore) {
	t.Run("missing key", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, appDb.ErrKeyNotFound)
		_, _, err = store.GetWithMetadata(context.Background(), "nope")
		assert.ErrorIs(t, err, appDb.ErrKeyNotFound)
		_, err = store.GetEntry(context.Background(), "nope")
		assert.ErrorIs(t, err, appDb.ErrKeyNotFound)
	})

	t.Run("put and get with metadata", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, "img", []byte{0x89, 0x50}, appDb.Metadata{"type": "image/png"}))

		value, err := store.Get(ctx, "img")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 0x50}, value)

		value, metadata, err := store.GetWithMetadata(ctx, "img")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 0x50}, value)
		assert.Equal(t, "image/png", metadata["type"])
	})

	t.Run("put overwrites and bumps version", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, "k", []byte("a"), nil))
		first, err := store.GetEntry(ctx, "k")
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "k", []byte("b"), nil))
		second, err := store.GetEntry(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), second.Value)
		assert.NotEqual(t, first.Version, second.Version)
		assert.Nil(t, second.Metadata)
	})

	t.Run("compare and swap", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.CompareAndSwap(ctx, "k", []byte("1"), nil, appDb.NoVersion))
		assert.ErrorIs(t, store.CompareAndSwap(ctx, "k", []byte("x"), nil, appDb.NoVersion), appDb.ErrVersionConflict)

		e, err := store.GetEntry(ctx, "k")
		require.NoError(t, err)
		assert.NotEqual(t, appDb.NoVersion, e.Version)

		require.NoError(t, store.CompareAndSwap(ctx, "k", []byte("2"), nil, e.Version))
		// the version we read is stale now
		assert.ErrorIs(t, store.CompareAndSwap(ctx, "k", []byte("3"), nil, e.Version), appDb.ErrVersionConflict)

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), value)
	})

	t.Run("concurrent swaps from one version admit a single winner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, "k", []byte("0"), nil))
		e, err := store.GetEntry(ctx, "k")
		require.NoError(t, err)

		const writers = 8
		results := make(chan error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results <- store.CompareAndSwap(ctx, "k", []byte{byte('a' + i)}, nil, e.Version)
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, appDb.ErrVersionConflict)
		}
		assert.Equal(t, 1, wins)
	})
}
