package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRaft(t *testing.T, fsm raft.FSM) *raft.Raft {
	t.Helper()

	cfg := raft.DefaultConfig()
	cfg.LocalID = "node1"
	cfg.HeartbeatTimeout = 50 * time.Millisecond
	cfg.ElectionTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 50 * time.Millisecond
	cfg.CommitTimeout = 5 * time.Millisecond
	cfg.Logger = hclog.NewNullLogger()

	addr, transport := raft.NewInmemTransport("")
	logs := raft.NewInmemStore()
	snapshots := raft.NewInmemSnapshotStore()

	r, err := raft.NewRaft(cfg, fsm, logs, logs, snapshots, transport)
	require.NoError(t, err)
	t.Cleanup(func() { r.Shutdown().Error() })

	bootstrap := raft.Configuration{Servers: []raft.Server{{ID: cfg.LocalID, Address: addr}}}
	require.NoError(t, r.BootstrapCluster(bootstrap).Error())
	require.Eventually(t, func() bool { return r.State() == raft.Leader }, 5*time.Second, 10*time.Millisecond)
	return r
}

func raftLog(t *testing.T, cmd RaftCommand[string]) *raft.Log {
	t.Helper()
	data, err := json.Marshal(cmd)
	require.NoError(t, err)
	return &raft.Log{Data: data}
}

func TestFSM_Apply(t *testing.T) {
	mem := NewMemStore[string]()
	fsm := NewFSM(mem)

	assert.Nil(t, fsm.Apply(raftLog(t, RaftCommand[string]{Op: "put", Key: key1, Value: val1})))
	assert.Nil(t, fsm.Apply(raftLog(t, RaftCommand[string]{Op: "put", Key: key2, Value: val2})))
	assert.Nil(t, fsm.Apply(raftLog(t, RaftCommand[string]{Op: "delete", Key: key2})))
	assert.Equal(t, map[string]string{key1: val1}, mem.Snapshot())

	resp := fsm.Apply(raftLog(t, RaftCommand[string]{Op: "rename", Key: key1}))
	assert.Error(t, resp.(error))

	resp = fsm.Apply(&raft.Log{Data: []byte("not json")})
	assert.Error(t, resp.(error))
}

type bufferSink struct {
	bytes.Buffer
	cancelled bool
}

func (s *bufferSink) ID() string   { return "test" }
func (s *bufferSink) Close() error { return nil }

func (s *bufferSink) Cancel() error {
	s.cancelled = true
	return nil
}

func TestFSM_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	src := NewMemStore[int]()
	require.NoError(t, src.Put(ctx, "wild-cats", 2))
	require.NoError(t, src.Put(ctx, "tame-cats", 5))

	snap, err := NewFSM(src).Snapshot()
	require.NoError(t, err)
	sink := &bufferSink{}
	require.NoError(t, snap.Persist(sink))
	snap.Release()
	assert.False(t, sink.cancelled)

	dst := NewMemStore[int]()
	require.NoError(t, dst.Put(ctx, "stale", 1))
	require.NoError(t, NewFSM(dst).Restore(io.NopCloser(&sink.Buffer)))
	assert.Equal(t, map[string]int{"wild-cats": 2, "tame-cats": 5}, dst.Snapshot())
}

func TestRaftStore_Program(t *testing.T) {
	mem := NewMemStore[int]()
	r := newTestRaft(t, NewFSM(mem))
	rs := NewRaftStore(mem, r, time.Second)
	assert.Same(t, r, rs.GetRaft())

	p := kv.NewProgram[int]().
		Put("wild-cats", 2).
		Put("tame-cats", 5).
		Get("wild-cats").
		Delete("tame-cats")

	results, err := kv.Run(context.Background(), p, rs)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[2].Found)
	assert.Equal(t, 2, results[2].Value)
	assert.Equal(t, map[string]int{"wild-cats": 2}, mem.Snapshot())
}

func TestRaftStore_ExpiredContext(t *testing.T) {
	mem := NewMemStore[string]()
	r := newTestRaft(t, NewFSM(mem))
	rs := NewRaftStore(mem, r, time.Second)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := rs.Put(ctx, key1, val1)
	var se *kv.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kv.OpPut, se.Op)
	assert.Equal(t, 0, mem.Len())
}

// stalledFSM holds every Apply until release is closed.
type stalledFSM struct {
	*FSM[string]
	release chan struct{}
}

func (f *stalledFSM) Apply(log *raft.Log) interface{} {
	<-f.release
	return f.FSM.Apply(log)
}

func TestRaftStore_CommitWaitHonoursDeadline(t *testing.T) {
	mem := NewMemStore[string]()
	fsm := &stalledFSM{FSM: NewFSM(mem), release: make(chan struct{})}
	r := newTestRaft(t, fsm)
	t.Cleanup(func() { close(fsm.release) })
	rs := NewRaftStore(mem, r, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rs.Put(ctx, key1, val1)
	require.ErrorIs(t, err, kv.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	var se *kv.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kv.OpPut, se.Op)
	assert.Equal(t, key1, se.Key)
}

func TestRaftStore_CommitWaitHonoursCancel(t *testing.T) {
	mem := NewMemStore[string]()
	fsm := &stalledFSM{FSM: NewFSM(mem), release: make(chan struct{})}
	r := newTestRaft(t, fsm)
	t.Cleanup(func() { close(fsm.release) })
	rs := NewRaftStore(mem, r, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err := rs.Put(ctx, key1, val1)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, kv.ErrTimeout)
}

func TestRaftStore_ApplyTimeoutBoundsWait(t *testing.T) {
	mem := NewMemStore[string]()
	fsm := &stalledFSM{FSM: NewFSM(mem), release: make(chan struct{})}
	r := newTestRaft(t, fsm)
	t.Cleanup(func() { close(fsm.release) })
	rs := NewRaftStore(mem, r, 100*time.Millisecond)

	err := rs.Delete(context.Background(), key1)
	require.ErrorIs(t, err, kv.ErrTimeout)
}
