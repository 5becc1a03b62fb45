package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// Publisher streams decision events to one topic, keyed by context key so every
// decision of a context lands on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

var _ bandit.EventPublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			Async:                  true,
			AllowAutoTopicCreation: true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Warn("kafka_publish_failed", "topic", topic, "messages", len(messages), "error", err)
				}
			},
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev domain.DecisionEvent) error {
	msg, err := toMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(ev domain.DecisionEvent) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal decision event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.ContextKey),
		Value: payload,
		Time:  ev.OccurredAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "bandit", Value: []byte(ev.Bandit)},
		},
	}, nil
}
