package cache_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/repository/cache"
)

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store, err := cache.NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.True(t, stderrors.Is(err, errors.ErrRecordNotFound))
	})

	t.Run("save replaces record", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k1", []byte("one")))
		require.NoError(t, store.Save(ctx, "k1", []byte("two")))

		data, err := store.Load(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "two", string(data))
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("list ignores foreign files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"k1"}, keys)
	})

	t.Run("keys cannot escape the directory", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, "../evil", []byte("x")))
		assert.Error(t, store.Save(ctx, ".hidden", []byte("x")))
	})

	t.Run("delete if unchanged", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "cond", []byte("old")))
		require.NoError(t, store.Save(ctx, "cond", []byte("new")))

		deleted, err := store.DeleteIf(ctx, "cond", []byte("old"))
		require.NoError(t, err)
		assert.False(t, deleted, "replaced record must be kept")
		data, err := store.Load(ctx, "cond")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))

		deleted, err = store.DeleteIf(ctx, "cond", []byte("new"))
		require.NoError(t, err)
		assert.True(t, deleted)
		_, err = store.Load(ctx, "cond")
		assert.True(t, stderrors.Is(err, errors.ErrRecordNotFound))

		deleted, err = store.DeleteIf(ctx, "cond", []byte("new"))
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("summary from file metadata", func(t *testing.T) {
		summary, err := store.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Count)
		assert.Equal(t, int64(len("two")), summary.TotalBytes)
		require.NotNil(t, summary.Oldest)
		assert.Equal(t, *summary.Oldest, *summary.Newest)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "k1"))
		require.NoError(t, store.Delete(ctx, "k1"))
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "a", []byte("1")))
		require.NoError(t, store.Save(ctx, "b", []byte("2")))

		removed, err := store.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}

func TestNewFileStore_RemovesLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	leftover := filepath.Join(dir, ".tmp-abc-123")
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o644))

	_, err := cache.NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = os.Stat(leftover)
	assert.True(t, os.IsNotExist(err))
}
