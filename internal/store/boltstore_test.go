package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBolt[V any](t *testing.T, path string) *BoltStore[V] {
	t.Helper()
	s, err := NewBoltStore[V](path, 0o600, time.Second)
	require.NoError(t, err)
	return s
}

func TestBoltStore_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := openBolt[string](t, filepath.Join(t.TempDir(), "kv.db"))
	defer s.Close()

	_, ok, err := s.Get(ctx, key1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, key1))

	require.NoError(t, s.Put(ctx, key1, val1))
	require.NoError(t, s.Put(ctx, key1, val2))
	v, ok, err := s.Get(ctx, key1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, val2, v)

	require.NoError(t, s.Delete(ctx, key1))
	require.NoError(t, s.Delete(ctx, key1))
	_, ok, err = s.Get(ctx, key1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s := openBolt[int](t, path)
	results, err := kv.Run(ctx, kv.NewProgram[int]().Put("wild-cats", 2).Put("tame-cats", 5).Delete("tame-cats"), s)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.NoError(t, s.Close())

	s = openBolt[int](t, path)
	defer s.Close()

	v, ok, err := s.Get(ctx, "wild-cats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBoltStore_CancelledContext(t *testing.T) {
	s := openBolt[string](t, filepath.Join(t.TempDir(), "kv.db"))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Put(ctx, key1, val1)
	var se *kv.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kv.OpPut, se.Op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoltStore_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyaz", "nested", "node1.db")
	s := openBolt[string](t, path)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), key1, val1))
	v, ok, err := s.Get(context.Background(), key1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, val1, v)
}
