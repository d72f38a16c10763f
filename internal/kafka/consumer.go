package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader MessageReader
	log    *logger.Logger
}

// NewConsumer reads topic as part of groupID. An empty group reads the
// partition from the start without committing offsets.
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	return NewConsumerWithReader(kafka.NewReader(cfg), log)
}

func NewConsumerWithReader(r MessageReader, log *logger.Logger) *Consumer {
	return &Consumer{reader: r, log: log}
}

func DecodeChange(msg kafka.Message) (models.Change, error) {
	var c models.Change
	if err := json.Unmarshal(msg.Value, &c); err != nil {
		return models.Change{}, fmt.Errorf("decode change at offset %d: %w", msg.Offset, err)
	}
	return c, nil
}

// Start hands every decoded change to handler until ctx is done or the
// handler fails. Malformed messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.Change) error) error {
	c.log.Info("KAFKA", "Change consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		change, err := DecodeChange(msg)
		if err != nil {
			c.log.Warn("KAFKA", err.Error())
			continue
		}
		if err := handler(change); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
