package queue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/taskcomposer/pkg/channels/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermill_PublishThroughGoChannel(t *testing.T) {
	t.Parallel()

	pubSub := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.Default()))

	messages, err := pubSub.Subscribe(t.Context(), "submissions")
	require.NoError(t, err)

	publisher := NewWatermill(pubSub, slog.Default())
	defer publisher.Close()

	delivery := publisher.Publish(t.Context(), &Message{
		Topic:   "submissions",
		Key:     []byte("etl-daily"),
		Value:   []byte(`{"workflowName":"etl-daily"}`),
		Headers: []Header{{Key: "traceparent", Value: []byte("00-abc-def-01")}},
	})

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	ack, err := delivery.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "submissions", ack.Topic)
	assert.Equal(t, int64(-1), ack.Offset)

	select {
	case received := <-messages:
		assert.JSONEq(t, `{"workflowName":"etl-daily"}`, string(received.Payload))
		assert.Equal(t, "00-abc-def-01", received.Metadata.Get("traceparent"))
		assert.Equal(t, "etl-daily", received.Metadata.Get(KeyMetadata))
		received.Ack()
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error {
	return nil
}

func TestWatermill_PublishFailure(t *testing.T) {
	t.Parallel()

	publisher := NewWatermill(failingPublisher{}, slog.Default())

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	_, err := publisher.Publish(t.Context(), &Message{Topic: "submissions"}).Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

// hungPublisher blocks every publish until release is closed.
type hungPublisher struct {
	release chan struct{}
}

func (p hungPublisher) Publish(string, ...*message.Message) error {
	<-p.release

	return nil
}

func (hungPublisher) Close() error {
	return nil
}

func TestWatermill_InFlightPublishesAreCapped(t *testing.T) {
	t.Parallel()

	hung := hungPublisher{release: make(chan struct{})}
	publisher := NewWatermill(hung, slog.Default(), WithMaxInFlight(1))

	first := publisher.Publish(t.Context(), &Message{Topic: "submissions"})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	second := publisher.Publish(ctx, &Message{Topic: "submissions"})
	assert.Less(t, time.Since(start), time.Second)

	select {
	case <-second.Done():
	default:
		t.Fatal("publish beyond the in-flight cap was left pending")
	}

	_, err := second.Wait(t.Context())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(hung.release)

	waitCtx, waitCancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer waitCancel()

	_, err = first.Wait(waitCtx)
	require.NoError(t, err)

	_, err = publisher.Publish(waitCtx, &Message{Topic: "submissions"}).Wait(waitCtx)
	require.NoError(t, err)
}
