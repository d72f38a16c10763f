package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer appends row changes to the audit topic. Messages are keyed by
// table and id so one record's history stays in one partition.
type Producer struct {
	writer MessageWriter
	topic  string
	log    *logger.Logger
}

// batchTimeout bounds how long a change waits for company before its
// batch is flushed.
const batchTimeout = 10 * time.Millisecond

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	return NewProducerWithWriter(newWriter(brokers, topic, log), topic, log)
}

// newWriter builds an async writer: WriteMessages only enqueues, so a
// change never holds up the request that made it. Delivery failures are
// reported through Completion.
func newWriter(brokers []string, topic string, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           batchTimeout,
		Async:                  true,
		Completion:             completion(topic, log),
	}
}

func completion(topic string, log *logger.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err != nil {
			log.Error("KAFKA", fmt.Sprintf("Failed to deliver %d changes to %s: %v", len(msgs), topic, err))
			return
		}
		for _, m := range msgs {
			log.LogKafka("DELIVERED", topic, string(m.Key))
		}
	}
}

func NewProducerWithWriter(w MessageWriter, topic string, log *logger.Logger) *Producer {
	return &Producer{writer: w, topic: topic, log: log}
}

func changeKey(c models.Change) []byte {
	return []byte(c.Table + ":" + c.ID)
}

// Send implements changefeed.Sink.
func (p *Producer) Send(ctx context.Context, c models.Change) error {
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	msg := kafka.Message{
		Key:   changeKey(c),
		Value: value,
		Headers: []kafka.Header{
			{Key: "op", Value: []byte(c.Op)},
			{Key: "table", Value: []byte(c.Table)},
		},
		Time: c.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write change to %s: %w", p.topic, err)
	}
	p.log.LogKafka("QUEUED", p.topic, string(msg.Key))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
