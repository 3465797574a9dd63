package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantify/plantify-go/store"
)

// RunContract exercises the behaviour every store.Store backend must share.
// newStore must return a fresh, empty store for each call.
func RunContract(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("get_missing_key", func(t *testing.T) {
		s := newStore(t)
		AssertMiss(t, s, "missing")
	})

	t.Run("set_then_get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, store.KeyAccessToken, []byte("a-1")))
		got, err := s.Get(ctx, store.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "a-1", string(got))
	})

	t.Run("set_overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("old")))
		require.NoError(t, s.Set(ctx, "k", []byte("new")))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "k"))
		AssertMiss(t, s, "k")
	})

	t.Run("json_round_trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		type cached struct {
			URL       string `json:"url"`
			Timestamp int64  `json:"timestamp"`
		}
		require.NoError(t, store.SetJSON(ctx, s, store.KeyDetectedAPIURL, cached{URL: "http://h:1/account", Timestamp: 42}))

		var got cached
		found, err := store.GetJSON(ctx, s, store.KeyDetectedAPIURL, &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, cached{URL: "http://h:1/account", Timestamp: 42}, got)
	})

	t.Run("concurrent_writes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Set(ctx, "shared", []byte{byte('a' + i)}))
			}(i)
		}
		wg.Wait()
		AssertHit(t, s, "shared")
	})

	t.Run("closed_store_rejects_operations", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Close())
		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, store.ErrClosed)
		assert.ErrorIs(t, s.Set(ctx, "k", nil), store.ErrClosed)
		assert.ErrorIs(t, s.Delete(ctx, "k"), store.ErrClosed)
		assert.ErrorIs(t, s.Close(), store.ErrClosed)
	})
}

// AssertHit asserts that key exists in s.
func AssertHit(t *testing.T, s store.Store, key string) {
	t.Helper()
	if _, err := s.Get(context.Background(), key); err != nil {
		t.Errorf("expected value for key %q, got error: %v", key, err)
	}
}

// AssertMiss asserts that key does not exist in s.
func AssertMiss(t *testing.T, s store.Store, key string) {
	t.Helper()
	_, err := s.Get(context.Background(), key)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for key %q, got: %v", key, err)
	}
}
