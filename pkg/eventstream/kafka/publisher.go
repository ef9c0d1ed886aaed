// Package kafka implements pkg/eventstream's Publisher on top of a Kafka
// topic via segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	segmentio "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/eventstream"
)

const (
	// DefaultTopic is the topic product events are published to.
	DefaultTopic = "minimart.products"
)

// Publisher writes product events to a Kafka topic as JSON, keyed by
// product id so all events for one product land on the same partition.
type Publisher struct {
	writer *segmentio.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses. Required.
	Brokers []string

	// Topic is the topic to publish to. Defaults to DefaultTopic if empty.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &segmentio.Writer{
		Addr:     segmentio.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &segmentio.Hash{},
	}

	logger.Info("kafka event publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topic),
	)

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishProduct writes one event to the topic.
func (p *Publisher) PublishProduct(ctx context.Context, event *eventstream.ProductEvent) error {
	if event == nil {
		return eventstream.ErrNilProductEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.EventID, err)
	}

	msg := segmentio.Message{
		Key:   []byte(strconv.Itoa(event.ProductID)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published product event",
		zap.String("event_type", event.EventType),
		zap.Int("product_id", event.ProductID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
