package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Config holds Kafka producer settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Producer writes order events to a single topic.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Producer. Messages with the same key land on the
// same partition.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("Kafka producer configured")
	return &Producer{writer: w}, nil
}

// Publish writes body keyed by key, with eventType in the "type" header.
func (p *Producer) Publish(ctx context.Context, eventType, key string, body []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: "type", Value: []byte(eventType)}},
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("error writing message to Kafka: %w", err)
	}
	log.Debug().Str("type", eventType).Str("key", key).Msg("sent order event")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
