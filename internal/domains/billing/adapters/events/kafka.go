// Package events publishes billing integration events.
package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = (*NopPublisher)(nil)
)

// KafkaPublisher writes invoice events to a Kafka topic, keyed by
// invoice number so one invoice's events stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher wires a writer for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *KafkaPublisher) PublishInvoiceConfirmed(ctx context.Context, event ports.InvoiceConfirmed) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.InvoiceNumber, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("invoice.confirmed")},
		},
	})
}

// Close flushes and releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events, for setups without a broker.
type NopPublisher struct{}

func (NopPublisher) PublishInvoiceConfirmed(context.Context, ports.InvoiceConfirmed) error {
	return nil
}
