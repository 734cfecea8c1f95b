package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name. Requests and responses travel as
// google.protobuf.Struct documents so the wire contract follows the JSON field names of the
// pipeline types.
const ServiceName = "hrbulk.v1.BulkService"

const (
	MethodInspect         = "/" + ServiceName + "/Inspect"
	MethodImportEmployees = "/" + ServiceName + "/ImportEmployees"
	MethodUpdateManagers  = "/" + ServiceName + "/UpdateManagers"
)

// BulkServiceServer is the server API for hrbulk.v1.BulkService.
type BulkServiceServer interface {
	Inspect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateManagers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(BulkServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BulkServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BulkServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BulkServiceDesc describes hrbulk.v1.BulkService for grpc.ServiceRegistrar.
var BulkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BulkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Inspect",
			Handler: unaryHandler(MethodInspect, func(s BulkServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Inspect(ctx, in)
			}),
		},
		{
			MethodName: "ImportEmployees",
			Handler: unaryHandler(MethodImportEmployees, func(s BulkServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ImportEmployees(ctx, in)
			}),
		},
		{
			MethodName: "UpdateManagers",
			Handler: unaryHandler(MethodUpdateManagers, func(s BulkServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.UpdateManagers(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrbulk/v1/bulk.proto",
}

func RegisterBulkServiceServer(s grpc.ServiceRegistrar, srv BulkServiceServer) {
	s.RegisterService(&BulkServiceDesc, srv)
}

// BulkServiceClient calls hrbulk.v1.BulkService over a client connection.
type BulkServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBulkServiceClient(cc grpc.ClientConnInterface) *BulkServiceClient {
	return &BulkServiceClient{cc: cc}
}

func (c *BulkServiceClient) Inspect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodInspect, in, opts...)
}

func (c *BulkServiceClient) ImportEmployees(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodImportEmployees, in, opts...)
}

func (c *BulkServiceClient) UpdateManagers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodUpdateManagers, in, opts...)
}

func (c *BulkServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
