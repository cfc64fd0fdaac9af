package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "certa.v1.Compatibility"

const (
	methodAssess        = "/" + ServiceName + "/Assess"
	methodEvaluate      = "/" + ServiceName + "/Evaluate"
	methodGetAssessment = "/" + ServiceName + "/GetAssessment"
)

// #region service-interfaces

// CompatibilityServer is the server API. Requests and responses are
// google.protobuf.Struct so the loosely typed API boundary reaches the run
// context builder unchanged.
type CompatibilityServer interface {
	Assess(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAssessment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// CompatibilityClient is the client API for CompatibilityServer.
type CompatibilityClient interface {
	Assess(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetAssessment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// #endregion service-interfaces

// #region client-stub
type compatibilityClient struct {
	cc grpc.ClientConnInterface
}

// NewCompatibilityClient returns a client stub bound to cc.
func NewCompatibilityClient(cc grpc.ClientConnInterface) CompatibilityClient {
	return &compatibilityClient{cc: cc}
}

func (c *compatibilityClient) Assess(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodAssess, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compatibilityClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodEvaluate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compatibilityClient) GetAssessment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetAssessment, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion client-stub

// #region service-desc

// RegisterCompatibilityServer attaches srv to s.
func RegisterCompatibilityServer(s grpc.ServiceRegistrar, srv CompatibilityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the Compatibility service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompatibilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Assess", Handler: unaryHandler(methodAssess, CompatibilityServer.Assess)},
		{MethodName: "Evaluate", Handler: unaryHandler(methodEvaluate, CompatibilityServer.Evaluate)},
		{MethodName: "GetAssessment", Handler: unaryHandler(methodGetAssessment, CompatibilityServer.GetAssessment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "certa/v1/compatibility.proto",
}

type unaryMethod func(CompatibilityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CompatibilityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CompatibilityServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc
