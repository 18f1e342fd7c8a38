package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the dashboard service.
const ServiceName = "cataloglens.v1.DashboardService"

const (
	getFilterOptionsMethod = "/" + ServiceName + "/GetFilterOptions"
	renderDashboardMethod  = "/" + ServiceName + "/RenderDashboard"
)

// DashboardServiceServer is the server API for the dashboard service.
// Requests and responses are JSON-shaped google.protobuf.Struct messages.
type DashboardServiceServer interface {
	GetFilterOptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDashboardServiceServer registers srv on s.
func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

func getFilterOptionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServiceServer).GetFilterOptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getFilterOptionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServiceServer).GetFilterOptions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func renderDashboardHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServiceServer).RenderDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: renderDashboardMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServiceServer).RenderDashboard(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardServiceDesc describes the dashboard service for grpc.Server.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFilterOptions", Handler: getFilterOptionsHandler},
		{MethodName: "RenderDashboard", Handler: renderDashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cataloglens/v1/dashboard.proto",
}

// DashboardServiceClient is the client API for the dashboard service.
type DashboardServiceClient interface {
	GetFilterOptions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RenderDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dashboardServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardServiceClient creates a client over cc.
func NewDashboardServiceClient(cc grpc.ClientConnInterface) DashboardServiceClient {
	return &dashboardServiceClient{cc: cc}
}

func (c *dashboardServiceClient) GetFilterOptions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getFilterOptionsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardServiceClient) RenderDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, renderDashboardMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
