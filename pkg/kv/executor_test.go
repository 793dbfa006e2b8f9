package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/heysubinoy/pyazkv/internal/store"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookStore calls after once each Put on the wrapped store returns.
type hookStore struct {
	kv.Store[int]
	after func(op kv.Op, key string)
}

func (s *hookStore) Put(ctx context.Context, key string, value int) error {
	err := s.Store.Put(ctx, key, value)
	s.after(kv.OpPut, key)
	return err
}

// failingStore fails every operation on one key.
type failingStore struct {
	kv.Store[int]
	key string
	err error
}

func (s *failingStore) Put(ctx context.Context, key string, value int) error {
	if key == s.key {
		return kv.NewStoreError(kv.OpPut, key, s.err)
	}
	return s.Store.Put(ctx, key, value)
}

func (s *failingStore) Get(ctx context.Context, key string) (int, bool, error) {
	if key == s.key {
		return 0, false, kv.NewStoreError(kv.OpGet, key, s.err)
	}
	return s.Store.Get(ctx, key)
}

func cats() kv.Program[int] {
	return kv.NewProgram[int]().
		Put("wild-cats", 2).
		Put("tame-cats", 5).
		Get("wild-cats").
		Delete("tame-cats")
}

func TestExecutor_Cats(t *testing.T) {
	mem := store.NewMemStore[int]()
	var trace []string
	exec := &kv.Executor[int]{
		Observer: func(_ int, c kv.Command[int]) { trace = append(trace, c.String()) },
	}

	results, err := exec.Run(context.Background(), cats(), mem)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"put(wild-cats, 2)",
		"put(tame-cats, 5)",
		"get(wild-cats)",
		"delete(tame-cats)",
	}, trace)

	require.Len(t, results, 4)
	assert.Equal(t, kv.Result[int]{Op: kv.OpPut, Key: "wild-cats"}, results[0])
	assert.Equal(t, kv.Result[int]{Op: kv.OpGet, Key: "wild-cats", Value: 2, Found: true}, results[2])
	assert.Equal(t, kv.Result[int]{Op: kv.OpDelete, Key: "tame-cats"}, results[3])

	assert.Equal(t, map[string]int{"wild-cats": 2}, mem.Snapshot())
}

func TestExecutor_LastWriteWins(t *testing.T) {
	mem := store.NewMemStore[string]()
	p := kv.NewProgram[string]().Put("k", "v1").Put("k", "v2").Get("k")

	results, err := kv.Run(context.Background(), p, mem)
	require.NoError(t, err)
	assert.Equal(t, "v2", results[2].Value)
	assert.True(t, results[2].Found)
}

func TestExecutor_GetMissingKey(t *testing.T) {
	results, err := kv.Run(context.Background(), kv.NewProgram[string]().Get("nope"), store.NewMemStore[string]())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Found)
	assert.Equal(t, "", results[0].Value)
}

func TestExecutor_EmptyProgram(t *testing.T) {
	results, err := kv.Run(context.Background(), kv.NewProgram[int](), store.NewMemStore[int]())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecutor_FailFastOnEmptyKey(t *testing.T) {
	mem := store.NewMemStore[int]()
	p := kv.NewProgram[int]().Put("a", 1).Put("b", 2).Put("", 3).Put("d", 4)

	var dispatched []int
	exec := &kv.Executor[int]{Observer: func(i int, _ kv.Command[int]) { dispatched = append(dispatched, i) }}
	results, err := exec.Run(context.Background(), p, mem)

	assert.Nil(t, results)
	var f *kv.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 2, f.Index)
	assert.ErrorIs(t, err, kv.ErrKeyEmpty)
	assert.Equal(t, []int{0, 1}, dispatched)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, mem.Snapshot())
}

func TestExecutor_FailFastOnStoreError(t *testing.T) {
	mem := store.NewMemStore[int]()
	boom := errors.New("connection reset")
	s := &failingStore{Store: mem, key: "bad", err: boom}
	p := kv.NewProgram[int]().Put("a", 1).Get("bad").Put("c", 3)

	results, err := kv.Run(context.Background(), p, s)

	assert.Nil(t, results)
	var f *kv.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 1, f.Index)

	var se *kv.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kv.OpGet, se.Op)
	assert.Equal(t, "bad", se.Key)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, map[string]int{"a": 1}, mem.Snapshot())
}

func TestExecutor_Cancellation(t *testing.T) {
	mem := store.NewMemStore[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &hookStore{Store: mem, after: func(kv.Op, string) { cancel() }}
	p := kv.NewProgram[int]().Put("a", 1).Put("b", 2).Put("c", 3)

	results, err := kv.Run(ctx, p, s)

	assert.Nil(t, results)
	var f *kv.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 1, f.Index)
	assert.ErrorIs(t, err, kv.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, map[string]int{"a": 1}, mem.Snapshot())
}

func TestExecutor_CancelledBeforeStart(t *testing.T) {
	mem := store.NewMemStore[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := kv.Run(ctx, cats(), mem)

	var f *kv.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 0, f.Index)
	assert.ErrorIs(t, err, kv.ErrCancelled)
	assert.Equal(t, 0, mem.Len())
}

func TestExecutor_ContinueOnError(t *testing.T) {
	mem := store.NewMemStore[int]()
	s := &failingStore{Store: mem, key: "bad", err: errors.New("disk full")}
	p := kv.NewProgram[int]().Put("a", 1).Put("bad", 2).Put("", 3).Get("a")

	exec := &kv.Executor[int]{Policy: kv.ContinueOnError}
	results, err := exec.Run(context.Background(), p, s)

	require.Error(t, err)
	require.Len(t, results, 4)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, kv.ErrKeyEmpty)
	assert.NoError(t, results[3].Err)
	assert.Equal(t, 1, results[3].Value)

	var f *kv.Failure
	require.ErrorAs(t, results[1].Err, &f)
	assert.Equal(t, 1, f.Index)
	assert.ErrorIs(t, err, kv.ErrKeyEmpty)

	assert.Equal(t, map[string]int{"a": 1}, mem.Snapshot())
}

func TestExecutor_RetryFromFailure(t *testing.T) {
	mem := store.NewMemStore[int]()
	p := kv.NewProgram[int]().Put("a", 1).Put("", 2).Put("c", 3)

	_, err := kv.Run(context.Background(), p, mem)
	var f *kv.Failure
	require.ErrorAs(t, err, &f)

	_, err = kv.Run(context.Background(), p.From(f.Index+1), mem)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "c": 3}, mem.Snapshot())
}

func TestStoreError_NotDoubleWrapped(t *testing.T) {
	inner := kv.NewStoreError(kv.OpPut, "k", errors.New("x"))
	outer := kv.NewStoreError(kv.OpGet, "other", inner)
	assert.Same(t, inner, outer)
	assert.Nil(t, kv.NewStoreError(kv.OpGet, "k", nil))
}
