package conductor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const requestMethod = "/compository.conductor.v1.AppInterface/Request"

// AppInterfaceServer is the server API for the AppInterface gRPC service.
//
// The service uses the protobuf BytesValue wrapper for both directions; the
// bytes are CBOR envelopes, so no protoc/codegen toolchain is involved.
type AppInterfaceServer interface {
	Request(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedAppInterfaceServer can be embedded to have forward compatible implementations.
type UnimplementedAppInterfaceServer struct{}

func (UnimplementedAppInterfaceServer) Request(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Request not implemented")
}

// RegisterAppInterfaceServer registers the AppInterface service on a gRPC server.
func RegisterAppInterfaceServer(s grpc.ServiceRegistrar, srv AppInterfaceServer) {
	s.RegisterService(&AppInterface_ServiceDesc, srv)
}

// AppInterfaceClient is the client API for the AppInterface gRPC service.
type AppInterfaceClient interface {
	Request(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type appInterfaceClient struct{ cc grpc.ClientConnInterface }

func NewAppInterfaceClient(cc grpc.ClientConnInterface) AppInterfaceClient {
	return &appInterfaceClient{cc: cc}
}

func (c *appInterfaceClient) Request(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, requestMethod, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _AppInterface_Request_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AppInterfaceServer).Request(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: requestMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AppInterfaceServer).Request(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// AppInterface_ServiceDesc is the grpc.ServiceDesc for the AppInterface service.
var AppInterface_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "compository.conductor.v1.AppInterface",
	HandlerType: (*AppInterfaceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Request", Handler: _AppInterface_Request_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "conductor.proto",
}
