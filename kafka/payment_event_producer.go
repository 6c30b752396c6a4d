package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/amirfaris/storefront-backend/models"
)

// PaymentEventProducer publishes payment events to Kafka.
type PaymentEventProducer struct {
	writer *kafka.Writer
}

// NewPaymentEventProducer creates a producer for the given brokers and topic.
func NewPaymentEventProducer(brokers []string, topic string) *PaymentEventProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &PaymentEventProducer{writer: writer}
}

// PublishPaymentEvent marshals and sends one payment event, keyed by order
// id so events for the same order stay ordered.
func (p *PaymentEventProducer) PublishPaymentEvent(ctx context.Context, event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *PaymentEventProducer) Close() error {
	return p.writer.Close()
}
