// Package kafka builds the watermill Kafka publisher for execution submissions.
package kafka

import (
	"errors"
	"slices"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// ErrNoBrokers is returned when no usable broker address is given.
var ErrNoBrokers = errors.New("no kafka brokers configured")

// CreatePublisher returns a publisher that waits for all in-sync replicas and
// carries OTel context in message headers.
func CreatePublisher(logger watermill.LoggerAdapter, brokers []string) (*kafka.Publisher, error) {
	brokers = slices.DeleteFunc(slices.Clone(brokers), func(b string) bool { return b == "" })
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	return kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: producerConfig(),
		OTELEnabled:           true,
	}, logger)
}

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "taskcomposer"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	return config
}
