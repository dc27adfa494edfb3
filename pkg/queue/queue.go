// Package queue defines the work-queue port used to hand execution
// submissions to downstream consumers.
package queue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by deliveries published after the publisher closed.
	ErrClosed = errors.New("publisher is closed")

	// ErrEmptyHeaderKey is returned when a header without a key is attached.
	ErrEmptyHeaderKey = errors.New("header key cannot be empty")
)

// Header is a message header.
type Header struct {
	Key   string
	Value []byte
}

// Message is a record addressed to a topic. A nil Key lets the broker pick
// the partition.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers []Header
}

// SetHeader attaches a header, replacing any header with the same key.
func (m *Message) SetHeader(key, value string) error {
	if key == "" {
		return ErrEmptyHeaderKey
	}

	for i := range m.Headers {
		if m.Headers[i].Key == key {
			m.Headers[i].Value = []byte(value)

			return nil
		}
	}

	m.Headers = append(m.Headers, Header{Key: key, Value: []byte(value)})

	return nil
}

// Header returns the value of the named header.
func (m *Message) Header(key string) (string, bool) {
	for _, header := range m.Headers {
		if header.Key == key {
			return string(header.Value), true
		}
	}

	return "", false
}

// Ack describes where the broker stored a message. Partition and Offset are
// -1 when the transport does not report them.
type Ack struct {
	Topic     string
	Partition int32
	Offset    int64
}

// Delivery is the future outcome of a publish.
type Delivery struct {
	done chan struct{}
	once sync.Once
	ack  Ack
	err  error
}

// NewDelivery returns an unresolved delivery.
func NewDelivery() *Delivery {
	return &Delivery{done: make(chan struct{})}
}

// FailedDelivery returns a delivery already resolved with err.
func FailedDelivery(err error) *Delivery {
	delivery := NewDelivery()
	delivery.Resolve(Ack{}, err)

	return delivery
}

// Resolve completes the delivery. Only the first call has an effect.
func (d *Delivery) Resolve(ack Ack, err error) {
	d.once.Do(func() {
		d.ack = ack
		d.err = err
		close(d.done)
	})
}

// Done is closed once the delivery is resolved.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the delivery resolves or ctx ends.
func (d *Delivery) Wait(ctx context.Context) (Ack, error) {
	select {
	case <-d.done:
		return d.ack, d.err
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	}
}

// Publisher sends messages without waiting for the broker.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) *Delivery
	Close() error
}
