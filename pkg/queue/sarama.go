package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"
)

// Sarama publishes through a sarama AsyncProducer. Each ProducerMessage
// carries its Delivery in Metadata; two goroutines drain Successes and
// Errors and resolve them.
type Sarama struct {
	producer sarama.AsyncProducer
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewKafka connects an async producer to the given brokers.
func NewKafka(brokers []string, logger *slog.Logger) (*Sarama, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewSarama(producer, logger), nil
}

// NewSarama wraps an existing producer. The producer must be configured with
// Producer.Return.Successes enabled.
func NewSarama(producer sarama.AsyncProducer, logger *slog.Logger) *Sarama {
	s := &Sarama{
		producer: producer,
		logger:   logger,
	}

	s.wg.Add(2)

	go s.drainSuccesses()
	go s.drainErrors()

	return s
}

func (s *Sarama) Publish(ctx context.Context, msg *Message) *Delivery {
	delivery := NewDelivery()

	producerMessage := &sarama.ProducerMessage{
		Topic:    msg.Topic,
		Value:    sarama.ByteEncoder(msg.Value),
		Metadata: delivery,
	}

	if msg.Key != nil {
		producerMessage.Key = sarama.ByteEncoder(msg.Key)
	}

	for _, header := range msg.Headers {
		producerMessage.Headers = append(producerMessage.Headers, sarama.RecordHeader{
			Key:   []byte(header.Key),
			Value: header.Value,
		})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		delivery.Resolve(Ack{Topic: msg.Topic}, ErrClosed)

		return delivery
	}

	select {
	case s.producer.Input() <- producerMessage:
	case <-ctx.Done():
		delivery.Resolve(Ack{Topic: msg.Topic}, ctx.Err())
	}

	return delivery
}

// Close flushes buffered messages and stops the producer.
func (s *Sarama) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	s.mu.Unlock()

	err := s.producer.Close()
	s.wg.Wait()

	return err
}

func (s *Sarama) drainSuccesses() {
	defer s.wg.Done()

	for msg := range s.producer.Successes() {
		resolve(msg, Ack{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset}, nil)
	}
}

func (s *Sarama) drainErrors() {
	defer s.wg.Done()

	for producerErr := range s.producer.Errors() {
		if producerErr.Msg == nil {
			s.logger.Error("Producer error without message", "error", producerErr.Err)

			continue
		}

		resolve(producerErr.Msg, Ack{Topic: producerErr.Msg.Topic, Partition: -1, Offset: -1}, producerErr.Err)
	}
}

func resolve(msg *sarama.ProducerMessage, ack Ack, err error) {
	if delivery, ok := msg.Metadata.(*Delivery); ok {
		delivery.Resolve(ack, err)
	}
}
