package blobstore

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "20240101/index-0.zst"
	data := []byte("compressed index block for cycle 20240101")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = store.Open(ctx, name)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "20240101", "index-0.zst"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	assert.Equal(t, "ssed ", string(buf))

	rc, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data[:10], got)
}

func TestLocalStore_PutListDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "20240102/index-1", []byte("b")))
	require.NoError(t, store.Put(ctx, "20240101/index-0", []byte("a")))
	require.NoError(t, store.Put(ctx, "20240101/index-1", []byte("c")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101/index-0", "20240101/index-1", "20240102/index-1"}, names)

	names, err = store.List(ctx, "20240101/")
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101/index-0", "20240101/index-1"}, names)

	data, err := ReadAll(ctx, store, "20240101/index-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), data)

	require.NoError(t, store.Delete(ctx, "20240101/index-0"))
	require.NoError(t, store.Delete(ctx, "20240101/index-0"))

	_, err = store.Open(ctx, "20240101/index-0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "a/1")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, store.Put(ctx, "a/0", []byte("zero")))
	require.NoError(t, store.Put(ctx, "b/0", []byte("other")))

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/0", "a/1"}, names)

	data, err := ReadAll(ctx, store, "a/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(ctx, "a/1"))
	_, err = store.Open(ctx, "a/1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_StagedWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "cycle/index-0.zst")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "cycle/index-0.zst")
	require.ErrorIs(t, err, ErrNotFound, "staged bytes are not visible before Close")

	ab, ok := w.(interface{ Abort() error })
	require.True(t, ok)
	require.NoError(t, ab.Abort())
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.Error(t, err)

	_, err = store.Open(ctx, "cycle/index-0.zst")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Ranges(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "blob", src))
	src[0] = 'x'

	b, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(10), b.Size())

	p := make([]byte, 4)
	n, err := b.ReadAt(ctx, p, 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(p[:n]))

	for _, tt := range []struct {
		off, length int64
		want        string
	}{
		{0, 3, "012"},
		{7, 100, "789"},
		{-5, 2, "01"},
		{12, 2, ""},
		{4, math.MaxInt64, "456789"},
	} {
		rc, err := b.ReadRange(ctx, tt.off, tt.length)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got), "off=%d len=%d", tt.off, tt.length)
	}
}
