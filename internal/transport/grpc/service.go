package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "coursewizard.v1.Wizard"

// Full method names, as used by clients with grpc.ClientConn.Invoke.
const (
	AdvanceMethod  = "/" + ServiceName + "/Advance"
	GetDraftMethod = "/" + ServiceName + "/GetDraft"
	StepsMethod    = "/" + ServiceName + "/Steps"
)

// WizardServer is the server API for the Wizard service. Messages are
// structpb.Struct values holding the JSON wire forms from the endpoint
// package.
type WizardServer interface {
	Advance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Steps(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type methodFunc func(WizardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call methodFunc) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WizardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WizardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// WizardServiceDesc describes the Wizard service for grpc.Server.RegisterService.
var WizardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WizardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Advance",
			Handler:    unaryHandler(AdvanceMethod, WizardServer.Advance),
		},
		{
			MethodName: "GetDraft",
			Handler:    unaryHandler(GetDraftMethod, WizardServer.GetDraft),
		},
		{
			MethodName: "Steps",
			Handler:    unaryHandler(StepsMethod, WizardServer.Steps),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coursewizard/v1/wizard.proto",
}
