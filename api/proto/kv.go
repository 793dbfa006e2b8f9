// Package proto defines the pyazkv.KV gRPC service.
//
// Messages travel as google.protobuf.Struct so the service needs no
// generated code; the request and response types below convert to and
// from that representation.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	KVService_ServiceName           = "pyazkv.KV"
	KVService_Get_FullMethodName    = "/pyazkv.KV/Get"
	KVService_Put_FullMethodName    = "/pyazkv.KV/Put"
	KVService_Delete_FullMethodName = "/pyazkv.KV/Delete"
)

type GetRequest struct {
	Key string
}

type GetResponse struct {
	Value string
	Found bool
}

type PutRequest struct {
	Key   string
	Value string
}

type PutResponse struct {
	Success bool
}

type DeleteRequest struct {
	Key string
}

type DeleteResponse struct {
	Success bool
}

func fields(m map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: m}
}

func str(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolean(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}

func (r *GetRequest) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{"key": structpb.NewStringValue(r.Key)})
}

func (r *GetResponse) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		"value": structpb.NewStringValue(r.Value),
		"found": structpb.NewBoolValue(r.Found),
	})
}

func (r *PutRequest) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		"key":   structpb.NewStringValue(r.Key),
		"value": structpb.NewStringValue(r.Value),
	})
}

func (r *PutResponse) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{"success": structpb.NewBoolValue(r.Success)})
}

func (r *DeleteRequest) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{"key": structpb.NewStringValue(r.Key)})
}

func (r *DeleteResponse) toStruct() *structpb.Struct {
	return fields(map[string]*structpb.Value{"success": structpb.NewBoolValue(r.Success)})
}

// KVServiceClient is the client API for the pyazkv.KV service.
type KVServiceClient interface {
	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
}

type kvServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewKVServiceClient(cc grpc.ClientConnInterface) KVServiceClient {
	return &kvServiceClient{cc}
}

func (c *kvServiceClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, KVService_Get_FullMethodName, in.toStruct(), out, opts...); err != nil {
		return nil, err
	}
	return &GetResponse{Value: str(out, "value"), Found: boolean(out, "found")}, nil
}

func (c *kvServiceClient) Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, KVService_Put_FullMethodName, in.toStruct(), out, opts...); err != nil {
		return nil, err
	}
	return &PutResponse{Success: boolean(out, "success")}, nil
}

func (c *kvServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, KVService_Delete_FullMethodName, in.toStruct(), out, opts...); err != nil {
		return nil, err
	}
	return &DeleteResponse{Success: boolean(out, "success")}, nil
}

// KVServiceServer is the server API for the pyazkv.KV service.
type KVServiceServer interface {
	Get(context.Context, *GetRequest) (*GetResponse, error)
	Put(context.Context, *PutRequest) (*PutResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
}

// UnimplementedKVServiceServer can be embedded to have forward compatible implementations.
type UnimplementedKVServiceServer struct{}

func (UnimplementedKVServiceServer) Get(context.Context, *GetRequest) (*GetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}

func (UnimplementedKVServiceServer) Put(context.Context, *PutRequest) (*PutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}

func (UnimplementedKVServiceServer) Delete(context.Context, *DeleteRequest) (*DeleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

func RegisterKVServiceServer(s grpc.ServiceRegistrar, srv KVServiceServer) {
	s.RegisterService(&KVService_ServiceDesc, srv)
}

func _KVService_Get_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		s := req.(*structpb.Struct)
		resp, err := srv.(KVServiceServer).Get(ctx, &GetRequest{Key: str(s, "key")})
		if err != nil {
			return nil, err
		}
		return resp.toStruct(), nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: KVService_Get_FullMethodName}
	return interceptor(ctx, in, info, handler)
}

func _KVService_Put_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		s := req.(*structpb.Struct)
		resp, err := srv.(KVServiceServer).Put(ctx, &PutRequest{Key: str(s, "key"), Value: str(s, "value")})
		if err != nil {
			return nil, err
		}
		return resp.toStruct(), nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: KVService_Put_FullMethodName}
	return interceptor(ctx, in, info, handler)
}

func _KVService_Delete_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		s := req.(*structpb.Struct)
		resp, err := srv.(KVServiceServer).Delete(ctx, &DeleteRequest{Key: str(s, "key")})
		if err != nil {
			return nil, err
		}
		return resp.toStruct(), nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: KVService_Delete_FullMethodName}
	return interceptor(ctx, in, info, handler)
}

// KVService_ServiceDesc is the grpc.ServiceDesc for the pyazkv.KV service.
var KVService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: KVService_ServiceName,
	HandlerType: (*KVServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: _KVService_Get_Handler},
		{MethodName: "Put", Handler: _KVService_Put_Handler},
		{MethodName: "Delete", Handler: _KVService_Delete_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pyazkv/kv.proto",
}
