package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantify/plantify-go/store"
	"github.com/plantify/plantify-go/store/storetest"
)

func TestMemoryContract(t *testing.T) {
	storetest.RunContract(t, func(_ *testing.T) store.Store {
		return store.NewMemory()
	})
}

func TestFileContract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) store.Store {
		s, err := store.OpenFile(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, err)
		return s
	})
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := store.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, store.KeyRefreshToken, []byte("r-1")))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := store.OpenFile(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, store.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "r-1", string(got))
	assert.Equal(t, path, reopened.Path())
}

func TestOpenFileErrors(t *testing.T) {
	t.Run("empty_path", func(t *testing.T) {
		_, err := store.OpenFile("")
		var cfgErr *store.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "store.path", cfgErr.Field)
	})

	t.Run("corrupt_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		_, err := store.OpenFile(path)
		var connErr *store.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, "decode", connErr.Op)
	})

	t.Run("empty_file_is_empty_store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		s, err := store.OpenFile(path)
		require.NoError(t, err)
		storetest.AssertMiss(t, s, "anything")
	})
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	got[0] = 'y'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestGetJSONDecodeError(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, store.KeyPredictionHistory, []byte("nope")))

	var out []string
	found, err := store.GetJSON(ctx, s, store.KeyPredictionHistory, &out)
	assert.True(t, found)
	var opErr *store.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "decode", opErr.Op)
	assert.Contains(t, err.Error(), "storage")
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewTokens(store.NewMemory())

	assert.False(t, tokens.IsAuthenticated(ctx))
	access, err := tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	require.NoError(t, tokens.Set(ctx, "a-1", "r-1"))
	assert.True(t, tokens.IsAuthenticated(ctx))

	require.NoError(t, tokens.SetAccess(ctx, "a-2"))
	access, err = tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-2", access)
	refresh, err := tokens.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r-1", refresh)

	require.NoError(t, tokens.Clear(ctx))
	assert.False(t, tokens.IsAuthenticated(ctx))
}

func TestTokensStorageFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	failing := storetest.NewFailingStore(store.NewMemory(), boom)
	tokens := store.NewTokens(failing)

	failing.FailOn("Set", "Delete")
	err := tokens.Set(ctx, "a", "r")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to store authentication tokens")

	err = tokens.Clear(ctx)
	assert.ErrorIs(t, err, boom)

	failing.FailOn("Get")
	assert.False(t, tokens.IsAuthenticated(ctx))
}
