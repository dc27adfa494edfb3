// Package submission hands validated trigger requests to the work queue.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/otelhelper"
	"github.com/dukex/taskcomposer/pkg/queue"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultAckTimeout bounds the wait for a broker acknowledgement.
	DefaultAckTimeout = 1000 * time.Millisecond

	// DefaultTopic receives execution submissions.
	DefaultTopic = "submissions"

	spanName = "workflow.submit"
)

// Submitter publishes execution submissions. The broker acknowledgement is
// awaited for a bounded time only; an unconfirmed delivery is logged and the
// execution identifier is returned anyway.
type Submitter struct {
	publisher  queue.Publisher
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     *slog.Logger
	topic      string
	ackTimeout time.Duration
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithAckTimeout overrides DefaultAckTimeout. Non-positive values are ignored.
func WithAckTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		if timeout > 0 {
			s.ackTimeout = timeout
		}
	}
}

// WithTopic overrides DefaultTopic.
func WithTopic(topic string) Option {
	return func(s *Submitter) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithPropagator overrides the global text map propagator.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(s *Submitter) {
		s.propagator = propagator
	}
}

// NewSubmitter creates a submitter publishing through publisher.
func NewSubmitter(publisher queue.Publisher, tracer trace.Tracer, logger *slog.Logger, opts ...Option) *Submitter {
	s := &Submitter{
		publisher:  publisher,
		tracer:     tracer,
		propagator: otel.GetTextMapPropagator(),
		logger:     logger,
		topic:      DefaultTopic,
		ackTimeout: DefaultAckTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit snapshots the workflow into an execution submission, publishes it
// and returns the new execution identifier. Only failures before the message
// is handed to the publisher are returned as errors.
func (s *Submitter) Submit(
	ctx context.Context,
	workflow *models.Workflow,
	tags []string,
	parameters map[string]string,
	args map[string]string,
) (string, error) {
	executionID := uuid.NewString()
	submission := models.NewExecutionSubmission(executionID, workflow, tags, parameters, args)

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, spanName,
		attribute.String(otelhelper.DestinationKey, s.topic),
		attribute.StringSlice(otelhelper.ExecutionTagsKey, submission.Tags),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		attribute.Int64(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	payload, err := json.Marshal(submission)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", fmt.Errorf("failed to encode execution submission: %w", err)
	}

	msg := &queue.Message{
		Topic: s.topic,
		Value: payload,
	}

	if failed := otelhelper.InjectHeaders(ctx, s.propagator, msg.SetHeader); len(failed) > 0 {
		s.logger.WarnContext(ctx, "Skipped trace headers that could not be attached",
			"execution_id", executionID, "headers", failed)
		span.SetAttributes(attribute.StringSlice(otelhelper.FailedHeadersKey, failed))
	}

	// The bound covers handing the message to the producer as well as the ack.
	waitCtx, cancel := context.WithTimeout(ctx, s.ackTimeout)
	defer cancel()

	ack, err := s.publisher.Publish(waitCtx, msg).Wait(waitCtx)
	if err != nil {
		s.logger.WarnContext(ctx, "Execution submission delivery not confirmed",
			"execution_id", executionID,
			"workflow", workflow.Name,
			"topic", s.topic,
			"timeout", s.ackTimeout,
			"error", err)
		otelhelper.SetWarning(span, "delivery_unconfirmed", err)

		return executionID, nil
	}

	s.logger.DebugContext(ctx, "Execution submission delivered",
		"execution_id", executionID,
		"topic", ack.Topic,
		"partition", ack.Partition,
		"offset", ack.Offset)
	span.SetAttributes(
		attribute.Int(otelhelper.PartitionKey, int(ack.Partition)),
		attribute.Int64(otelhelper.OffsetKey, ack.Offset),
	)

	return executionID, nil
}
