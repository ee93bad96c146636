// Package queue adapts the Kafka transport: multi-topic publisher, the
// sequential inbound consumer loop, and startup topic creation.
package queue

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer wraps a Kafka writer shared across the outbound topics.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the given brokers. Topics are chosen per
// message; partitioning hashes the message key (sensor identity).
func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false, // Synchronous for reliability
		},
	}
}

// Publish sends one message to a topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}
	return nil
}

// Close closes the producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Handler processes one inbound message. Failures are the handler's own
// concern; the listener commits the offset either way.
type Handler func(ctx context.Context, topic string, value []byte)

// Listener consumes the inbound topics in one consumer group and hands each
// message to the handler strictly sequentially: the next fetch does not start
// until the previous handler call returns.
type Listener struct {
	reader *kafka.Reader
	logger *zap.Logger
}

// NewListener creates a consumer over the given topics.
func NewListener(brokers []string, groupID string, topics []string, logger *zap.Logger) *Listener {
	return &Listener{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupTopics:    topics,
			GroupID:        groupID,
			MinBytes:       1,    // 1 byte
			MaxBytes:       10e6, // 10MB
			CommitInterval: 0,    // commit after each handled message
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}
}

// Run blocks fetching messages until the context is canceled or the reader is
// closed. Offsets are committed after the handler returns; there is no retry,
// redelivery is the broker's concern.
func (l *Listener) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			// A closed reader surfaces io.EOF; both that and cancellation are
			// orderly shutdown.
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		handle(ctx, msg.Topic, msg.Value)

		if err := l.reader.CommitMessages(ctx, msg); err != nil {
			l.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

// Close closes the consumer.
func (l *Listener) Close() error {
	return l.reader.Close()
}

// Stats returns consumer statistics.
func (l *Listener) Stats() kafka.ReaderStats {
	return l.reader.Stats()
}

// EnsureTopics creates the pipeline's topics at startup. It doubles as the
// connectivity probe: a broker that cannot be reached fails process startup.
func EnsureTopics(brokers []string, topics []string, numPartitions, replicationFactor int) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		topicConfigs = append(topicConfigs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		})
	}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil &&
		!errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	return nil
}
