package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/raft"
	"github.com/heysubinoy/pyazkv/pkg/kv"
)

// RaftCommand represents a put/delete operation to be applied via Raft.
type RaftCommand[V any] struct {
	Op    string `json:"op"` // "put" or "delete"
	Key   string `json:"key"`
	Value V      `json:"value,omitempty"` // only for put
}

// FSM applies committed raft log entries to a local MemStore.
type FSM[V any] struct {
	store *MemStore[V]
}

var _ raft.FSM = (*FSM[string])(nil)

func NewFSM[V any](store *MemStore[V]) *FSM[V] {
	return &FSM[V]{store: store}
}

// Apply applies a Raft log entry to the local store.
// The returned value is handed back to the caller of raft.Apply.
func (f *FSM[V]) Apply(log *raft.Log) interface{} {
	var cmd RaftCommand[V]
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return err
	}
	ctx := context.Background()
	switch cmd.Op {
	case "put":
		return f.store.Put(ctx, cmd.Key, cmd.Value)
	case "delete":
		return f.store.Delete(ctx, cmd.Key)
	}
	return fmt.Errorf("unknown raft command %q", cmd.Op)
}

// Snapshot captures the full key space as JSON.
func (f *FSM[V]) Snapshot() (raft.FSMSnapshot, error) {
	return &memSnapshot[V]{data: f.store.Snapshot()}, nil
}

// Restore replaces the local store with a previously persisted snapshot.
func (f *FSM[V]) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	data := make(map[string]V)
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	f.store.Replace(data)
	return nil
}

type memSnapshot[V any] struct {
	data map[string]V
}

func (s *memSnapshot[V]) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(s.data); err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *memSnapshot[V]) Release() {}

// RaftStore submits writes through Raft consensus and reads from the local
// replica. A write waits for commit until the context is done or the
// configured apply timeout passes, whichever is first. An abandoned write
// may still commit later.
type RaftStore[V any] struct {
	store   *MemStore[V]
	raft    *raft.Raft
	timeout time.Duration
}

var _ kv.Store[string] = (*RaftStore[string])(nil)

func NewRaftStore[V any](store *MemStore[V], r *raft.Raft, timeout time.Duration) *RaftStore[V] {
	return &RaftStore[V]{store: store, raft: r, timeout: timeout}
}

// GetRaft returns the underlying raft.Raft pointer (for API layer leader checks)
func (rs *RaftStore[V]) GetRaft() *raft.Raft {
	return rs.raft
}

// Put submits a put command to Raft.
func (rs *RaftStore[V]) Put(ctx context.Context, key string, value V) error {
	return rs.apply(ctx, kv.OpPut, RaftCommand[V]{Op: "put", Key: key, Value: value})
}

// Delete submits a delete command to Raft.
func (rs *RaftStore[V]) Delete(ctx context.Context, key string) error {
	return rs.apply(ctx, kv.OpDelete, RaftCommand[V]{Op: "delete", Key: key})
}

// Get reads directly from the local store.
func (rs *RaftStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero V
		return zero, false, kv.NewStoreError(kv.OpGet, key, err)
	}
	return rs.store.Get(ctx, key)
}

func (rs *RaftStore[V]) apply(ctx context.Context, op kv.Op, cmd RaftCommand[V]) error {
	if err := ctx.Err(); err != nil {
		return kv.NewStoreError(op, cmd.Key, err)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return kv.NewStoreError(op, cmd.Key, err)
	}

	if rs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.timeout)
		defer cancel()
	}
	deadline, ok := ctx.Deadline()
	var timeout time.Duration
	if ok {
		if timeout = time.Until(deadline); timeout <= 0 {
			return kv.NewStoreError(op, cmd.Key, kv.ErrTimeout)
		}
	}

	// The future keeps waiting for commit after we give up; the buffered
	// channel lets that goroutine exit once raft resolves it.
	f := rs.raft.Apply(data, timeout)
	done := make(chan error, 1)
	go func() { done <- f.Error() }()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, raft.ErrEnqueueTimeout) {
				err = fmt.Errorf("%w: %w", kv.ErrTimeout, err)
			}
			return kv.NewStoreError(op, cmd.Key, err)
		}
	case <-ctx.Done():
		return kv.NewStoreError(op, cmd.Key, ctxError(ctx))
	}
	if err, ok := f.Response().(error); ok && err != nil {
		return kv.NewStoreError(op, cmd.Key, err)
	}
	return nil
}

// ctxError reports an expired deadline as ErrTimeout and any other
// cancellation as-is.
func ctxError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", kv.ErrTimeout, err)
	}
	return err
}
