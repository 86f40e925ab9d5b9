package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

const orderPlacedEventType = "order.placed"

// Publisher announces placed orders to downstream consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, domain.Order) error { return nil }
func (NopPublisher) Close() error                                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type orderPlacedEvent struct {
	OrderID        string                `json:"order_id"`
	OrderTime      time.Time             `json:"order_time"`
	TotalCostCents int64                 `json:"total_cost_cents"`
	Products       []domain.OrderProduct `json:"products"`
	PublishedAt    time.Time             `json:"published_at"`
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(orderPlacedEvent{
		OrderID:        order.ID,
		OrderTime:      order.OrderTime,
		TotalCostCents: order.TotalCostCents,
		Products:       order.Products,
		PublishedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(orderPlacedEventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
