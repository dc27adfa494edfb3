package rpc

import (
	"context"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OriginGRPC marks executions triggered through the RPC edge.
const OriginGRPC = "grpc"

// Triggerer submits workflow executions.
type Triggerer interface {
	Trigger(ctx context.Context, req services.TriggerRequest) (string, error)
}

// Server implements WorkflowTriggerServiceServer on top of the trigger service.
type Server struct {
	trigger Triggerer
	logger  *slog.Logger
}

func NewServer(trigger Triggerer, logger *slog.Logger) *Server {
	return &Server{trigger: trigger, logger: logger}
}

// NewGRPCServer creates a gRPC server with the trigger service registered.
// Incoming trace context is extracted before any interceptor in opts runs.
func NewGRPCServer(trigger Triggerer, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(traceContextInterceptor)}, opts...)
	server := grpc.NewServer(opts...)
	RegisterWorkflowTriggerServiceServer(server, NewServer(trigger, logger))

	return server
}

func (s *Server) TriggerWorkflow(ctx context.Context, req *TriggerRequest) (*TriggerResponse, error) {
	executionID, err := s.trigger.Trigger(ctx, services.TriggerRequest{
		WorkflowName: req.WorkflowName,
		Tags:         req.Tags,
		Parameters:   toMap(req.Parameters),
		Args:         toMap(req.Args),
		Origin:       OriginGRPC,
	})
	if err != nil {
		return nil, s.toStatus(ctx, req, err)
	}

	return &TriggerResponse{UUID: executionID}, nil
}

func (s *Server) toStatus(ctx context.Context, req *TriggerRequest, err error) error {
	switch {
	case services.IsNotFoundError(err):
		return status.Errorf(codes.NotFound, "Workflow %s not found", req.WorkflowName)
	case services.IsValidationError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case services.IsConflictError(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.ErrorContext(ctx, "Trigger failed", "workflow", req.WorkflowName, "error", err)

		return status.Error(codes.Internal, "failed to trigger workflow")
	}
}
