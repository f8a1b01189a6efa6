package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"checkout-service/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderAcceptedEvent announces that the relay accepted an order. Downstream
// services (fulfillment, notifications) consume it; payment verification
// state is not part of this event.
type OrderAcceptedEvent struct {
	Event          string    `json:"event"`
	OrderID        string    `json:"order_id"`
	CustomerEmail  string    `json:"customer_email"`
	Total          float64   `json:"total"`
	Cryptocurrency string    `json:"cryptocurrency"`
	Timestamp      time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Kafka producer initialized",
		zap.String("topic", topic),
		zap.String("brokers", brokers),
	)
	return &Producer{writer: w, topic: topic, logger: logger}
}

// SendOrderAccepted publishes the event keyed by order id.
func (p *Producer) SendOrderAccepted(ctx context.Context, event OrderAcceptedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish order event",
			zap.String("order_id", event.OrderID),
			zap.String("topic", p.topic),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewOrderAcceptedEvent builds the event from a normalized order.
func NewOrderAcceptedEvent(order *models.NormalizedOrder) OrderAcceptedEvent {
	return OrderAcceptedEvent{
		Event:          "order.accepted",
		OrderID:        order.OrderID,
		CustomerEmail:  order.CustomerInfo.Email,
		Total:          order.Totals.Total,
		Cryptocurrency: order.CryptoPaymentDetails.Cryptocurrency,
		Timestamp:      time.Now().UTC(),
	}
}
