package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"stockledger/internal/config"
	"stockledger/internal/domain"
)

const (
	writeTimeout = 5 * time.Second
	maxAttempts  = 3
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits committed stock changes to a Kafka topic. Messages are
// keyed by product id so every change of one product lands on the same
// partition in commit order.
type Publisher struct {
	writer messageWriter
	topic  string
}

func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  maxAttempts,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Sugar().Errorf("kafka writer: "+msg, args...)
		}),
	}
	return &Publisher{writer: writer, topic: cfg.Topic}
}

func (p *Publisher) Name() string {
	return "kafka"
}

func (p *Publisher) Publish(ctx context.Context, event domain.StockEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing %s event for product %s to %s: %w", event.Operation, event.ProductID, p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NewMessage encodes event as the JSON value of a stock.changed message.
func NewMessage(event domain.StockEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding stock event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(event.Operation)},
		},
	}, nil
}
