package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName          = "taskcomposer.workflow_manager.WorkflowTriggerService"
	TriggerWorkflowRoute = "/" + ServiceName + "/TriggerWorkflow"
)

// WorkflowTriggerServiceServer is the server API for WorkflowTriggerService.
type WorkflowTriggerServiceServer interface {
	TriggerWorkflow(ctx context.Context, req *TriggerRequest) (*TriggerResponse, error)
}

// RegisterWorkflowTriggerServiceServer registers the service with a gRPC server.
func RegisterWorkflowTriggerServiceServer(s grpc.ServiceRegistrar, srv WorkflowTriggerServiceServer) {
	s.RegisterService(&WorkflowTriggerService_ServiceDesc, srv)
}

func triggerWorkflowHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(TriggerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(WorkflowTriggerServiceServer).TriggerWorkflow(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TriggerWorkflowRoute,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkflowTriggerServiceServer).TriggerWorkflow(ctx, req.(*TriggerRequest))
	}

	return interceptor(ctx, in, info, handler)
}

// WorkflowTriggerService_ServiceDesc is the grpc.ServiceDesc for WorkflowTriggerService.
var WorkflowTriggerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkflowTriggerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TriggerWorkflow", Handler: triggerWorkflowHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "workflow_trigger.proto",
}

// WorkflowTriggerServiceClient is the client API for WorkflowTriggerService.
type WorkflowTriggerServiceClient struct {
	conn grpc.ClientConnInterface
}

func NewWorkflowTriggerServiceClient(conn grpc.ClientConnInterface) *WorkflowTriggerServiceClient {
	return &WorkflowTriggerServiceClient{conn: conn}
}

func (c *WorkflowTriggerServiceClient) TriggerWorkflow(
	ctx context.Context,
	in *TriggerRequest,
	opts ...grpc.CallOption,
) (*TriggerResponse, error) {
	out := new(TriggerResponse)

	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, TriggerWorkflowRoute, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
