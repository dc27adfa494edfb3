package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelivery_FirstResolutionWins(t *testing.T) {
	t.Parallel()

	delivery := NewDelivery()
	delivery.Resolve(Ack{Topic: "submissions", Partition: 1, Offset: 42}, nil)
	delivery.Resolve(Ack{}, errors.New("late failure"))

	ack, err := delivery.Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, Ack{Topic: "submissions", Partition: 1, Offset: 42}, ack)

	select {
	case <-delivery.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestDelivery_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	delivery := NewDelivery()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := delivery.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFailedDelivery(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := FailedDelivery(boom).Wait(t.Context())
	assert.ErrorIs(t, err, boom)
}

func TestMessage_SetHeader(t *testing.T) {
	t.Parallel()

	msg := &Message{Topic: "submissions"}

	require.NoError(t, msg.SetHeader("traceparent", "a"))
	require.NoError(t, msg.SetHeader("traceparent", "b"))
	assert.ErrorIs(t, msg.SetHeader("", "c"), ErrEmptyHeaderKey)

	require.Len(t, msg.Headers, 1)

	value, ok := msg.Header("traceparent")
	assert.True(t, ok)
	assert.Equal(t, "b", value)

	_, ok = msg.Header("missing")
	assert.False(t, ok)
}
