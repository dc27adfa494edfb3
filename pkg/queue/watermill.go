package queue

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/semaphore"
)

const (
	// KeyMetadata carries the message key through watermill metadata.
	KeyMetadata = "message_key"

	// DefaultMaxInFlight caps concurrent watermill publishes.
	DefaultMaxInFlight = 64
)

// Watermill adapts a watermill publisher. Watermill publishers confirm
// synchronously, so each publish runs on its own goroutine and the
// Delivery resolves when it returns.
//
// message.Publisher takes no context, so a hung publish cannot be abandoned.
// At most maxInFlight of them run at once; further publishes wait for a slot
// until their context ends and then fail without starting a goroutine.
type Watermill struct {
	publisher message.Publisher
	logger    *slog.Logger
	inFlight  *semaphore.Weighted
}

// WatermillOption configures a Watermill publisher.
type WatermillOption func(*watermillConfig)

type watermillConfig struct {
	maxInFlight int64
}

// WithMaxInFlight overrides DefaultMaxInFlight. Non-positive values are ignored.
func WithMaxInFlight(n int64) WatermillOption {
	return func(c *watermillConfig) {
		if n > 0 {
			c.maxInFlight = n
		}
	}
}

// NewWatermill wraps a watermill publisher.
func NewWatermill(publisher message.Publisher, logger *slog.Logger, opts ...WatermillOption) *Watermill {
	config := watermillConfig{maxInFlight: DefaultMaxInFlight}
	for _, opt := range opts {
		opt(&config)
	}

	return &Watermill{
		publisher: publisher,
		logger:    logger,
		inFlight:  semaphore.NewWeighted(config.maxInFlight),
	}
}

func (w *Watermill) Publish(ctx context.Context, msg *Message) *Delivery {
	delivery := NewDelivery()
	unconfirmed := Ack{Topic: msg.Topic, Partition: -1, Offset: -1}

	if err := w.inFlight.Acquire(ctx, 1); err != nil {
		w.logger.WarnContext(ctx, "Watermill publish slots exhausted", "topic", msg.Topic, "error", err)
		delivery.Resolve(unconfirmed, err)

		return delivery
	}

	wmMessage := message.NewMessage(watermill.NewUUID(), msg.Value)
	wmMessage.SetContext(context.WithoutCancel(ctx))

	for _, header := range msg.Headers {
		wmMessage.Metadata.Set(header.Key, string(header.Value))
	}

	if msg.Key != nil {
		wmMessage.Metadata.Set(KeyMetadata, string(msg.Key))
	}

	go func() {
		defer w.inFlight.Release(1)

		err := w.publisher.Publish(msg.Topic, wmMessage)
		if err != nil {
			w.logger.DebugContext(ctx, "Watermill publish failed", "topic", msg.Topic, "error", err)
		}

		delivery.Resolve(unconfirmed, err)
	}()

	return delivery
}

func (w *Watermill) Close() error {
	return w.publisher.Close()
}
