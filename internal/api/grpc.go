package api

import (
	"context"
	"errors"

	"github.com/heysubinoy/pyazkv/api/proto"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCServer implements the proto.KVServiceServer interface.
// It wraps a kv.Store and exposes it over gRPC.
type GRPCServer struct {
	proto.UnimplementedKVServiceServer
	Store kv.Store[string]
}

// NewGRPCServer creates a new gRPC server with the given store.
func NewGRPCServer(store kv.Store[string]) *GRPCServer {
	return &GRPCServer{
		Store: store,
	}
}

// Get retrieves a value by key.
func (s *GRPCServer) Get(ctx context.Context, req *proto.GetRequest) (*proto.GetResponse, error) {
	if req.Key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}

	value, found, err := s.Store.Get(ctx, req.Key)
	if err != nil {
		return nil, storeStatus(err, "failed to get key")
	}
	return &proto.GetResponse{
		Value: value,
		Found: found,
	}, nil
}

// Put stores a key-value pair.
func (s *GRPCServer) Put(ctx context.Context, req *proto.PutRequest) (*proto.PutResponse, error) {
	if req.Key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}

	if err := s.Store.Put(ctx, req.Key, req.Value); err != nil {
		return nil, storeStatus(err, "failed to put key")
	}

	return &proto.PutResponse{
		Success: true,
	}, nil
}

// Delete removes a key from the store.
func (s *GRPCServer) Delete(ctx context.Context, req *proto.DeleteRequest) (*proto.DeleteResponse, error) {
	if req.Key == "" {
		return nil, status.Error(codes.InvalidArgument, "key is required")
	}

	if err := s.Store.Delete(ctx, req.Key); err != nil {
		return nil, storeStatus(err, "failed to delete key")
	}

	return &proto.DeleteResponse{
		Success: true,
	}, nil
}

func storeStatus(err error, msg string) error {
	switch {
	case errors.Is(err, kv.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, msg+": "+err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, msg)
	}
	return status.Error(codes.Internal, msg+": "+err.Error())
}
