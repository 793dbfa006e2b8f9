package store

import (
	"context"
	"fmt"
	"time"

	"github.com/heysubinoy/pyazkv/api/proto"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RemoteStore is a kv.Store backed by a pyazkv.KV gRPC server.
// Every call is bounded by timeout; an expired deadline surfaces as a
// *kv.StoreError wrapping kv.ErrTimeout.
type RemoteStore struct {
	client  proto.KVServiceClient
	timeout time.Duration
}

var _ kv.Store[string] = (*RemoteStore)(nil)

func NewRemoteStore(conn grpc.ClientConnInterface, timeout time.Duration) *RemoteStore {
	return &RemoteStore{
		client:  proto.NewKVServiceClient(conn),
		timeout: timeout,
	}
}

func (s *RemoteStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	resp, err := s.client.Get(ctx, &proto.GetRequest{Key: key})
	if err != nil {
		return "", false, remoteError(kv.OpGet, key, err)
	}
	return resp.Value, resp.Found, nil
}

func (s *RemoteStore) Put(ctx context.Context, key, value string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.client.Put(ctx, &proto.PutRequest{Key: key, Value: value}); err != nil {
		return remoteError(kv.OpPut, key, err)
	}
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.client.Delete(ctx, &proto.DeleteRequest{Key: key}); err != nil {
		return remoteError(kv.OpDelete, key, err)
	}
	return nil
}

func (s *RemoteStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func remoteError(op kv.Op, key string, err error) error {
	if status.Code(err) == codes.DeadlineExceeded {
		err = fmt.Errorf("%w: %w", kv.ErrTimeout, err)
	}
	return kv.NewStoreError(op, key, err)
}
