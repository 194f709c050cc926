package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"orbo/internal/config"
	"orbo/internal/logger"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to Kafka topics.
type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// NopPublisher otherwise.
func NewPublisher(cfg *config.Config) Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Get().Info("Kafka brokers not configured, domain events disabled")
		return NopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Get().Infow("Kafka publisher initialized", "brokers", cfg.KafkaBrokers, "topic_prefix", cfg.KafkaTopicPrefix)
	return newKafkaPublisher(writer, cfg.KafkaTopicPrefix)
}

func newKafkaPublisher(writer messageWriter, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topicPrefix: topicPrefix}
}

// ChatMigrated publishes a chat migration keyed by the old chat id.
func (p *KafkaPublisher) ChatMigrated(ctx context.Context, event ChatMigratedEvent) error {
	return p.publish(ctx, topicChatMigrated, strconv.FormatInt(event.OldChatID, 10), event)
}

// ParticipantsBackfilled publishes a backfill summary keyed by organization.
func (p *KafkaPublisher) ParticipantsBackfilled(ctx context.Context, event ParticipantsBackfilledEvent) error {
	return p.publish(ctx, topicParticipantsBackfilled, event.OrgID, event)
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	fullTopic := p.topicPrefix + topic
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: fullTopic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		logger.Get().Errorw("failed to publish event", "topic", fullTopic, "key", key, "error", err)
		return fmt.Errorf("failed to publish %s event: %w", fullTopic, err)
	}

	logger.Get().Debugw("event published", "topic", fullTopic, "key", key)
	return nil
}
