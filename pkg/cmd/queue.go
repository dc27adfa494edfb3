package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/taskcomposer/pkg/channels/gochannel"
	"github.com/dukex/taskcomposer/pkg/channels/kafka"
	"github.com/dukex/taskcomposer/pkg/queue"
)

// Queue providers accepted by NewPublisher.
const (
	QueueKafka          = "kafka"
	QueueWatermillKafka = "watermill-kafka"
	QueueGoChannel      = "gochannel"
)

// NewPublisher creates the work queue publisher for the given provider.
func NewPublisher(provider string, brokers []string, logger *slog.Logger) (queue.Publisher, error) {
	switch provider {
	case QueueKafka:
		publisher, err := queue.NewKafka(brokers, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}

		return publisher, nil
	case QueueWatermillKafka:
		pub, err := kafka.CreatePublisher(watermill.NewSlogLogger(logger), brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}

		return queue.NewWatermill(pub, logger), nil
	case QueueGoChannel:
		logger.Warn("Using in-process queue; submissions are not delivered to any scheduler")

		return queue.NewWatermill(gochannel.CreateChannel(watermill.NewSlogLogger(logger)), logger), nil
	default:
		return nil, fmt.Errorf("%w: queue %q", ErrUnsupportedProvider, provider)
	}
}
