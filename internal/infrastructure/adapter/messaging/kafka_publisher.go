// Package messaging implements the event publisher port.
package messaging

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	messagingport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/messaging"
)

// KafkaConfig holds producer settings
type KafkaConfig struct {
	Brokers    []string
	ClientID   string
	MaxRetries int
}

// KafkaPublisher publishes with a sarama SyncProducer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   coreport.Logger
}

var _ messagingport.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher connects a synchronous producer that waits for all replicas
func NewKafkaPublisher(cfg KafkaConfig, logger coreport.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	conf := sarama.NewConfig()
	if cfg.ClientID != "" {
		conf.ClientID = cfg.ClientID
	}
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Retry.Max = 3
	if cfg.MaxRetries > 0 {
		conf.Producer.Retry.Max = cfg.MaxRetries
	}
	conf.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("Kafka producer created", map[string]any{
		"brokers":   cfg.Brokers,
		"client_id": conf.ClientID,
	})
	return NewKafkaPublisherFromProducer(producer, logger), nil
}

// NewKafkaPublisherFromProducer wraps an existing producer
func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, logger coreport.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// Publish sends one message keyed for partition affinity
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("Event published", map[string]any{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
