package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"reservation-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

const (
	TypeCreated   = "created"
	TypeUpdated   = "updated"
	TypeCancelled = "cancelled"
)

// MessageKey returns the partition key of an event, e.g. reservation-created-12.
func MessageKey(event entity.ReservationEvent) string {
	return fmt.Sprintf("reservation-%s-%d", event.Type, event.ReservationID)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes reservation events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.ReservationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(MessageKey(event)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event %s: %w", msg.Key, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event entity.ReservationEvent) error {
	logger.Info().
		Str("key", MessageKey(event)).
		Int64("reservation_id", event.ReservationID).
		Int64("restaurant_id", event.RestaurantID).
		Str("date", event.Date).
		Msg("reservation event")
	return nil
}

func (LogPublisher) Close() error { return nil }

// Consumer reads reservation events from the topic and hands them to a handler.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		}),
	}
}

// Run blocks until ctx is done or the reader fails. Undecodable messages are skipped.
func (c *Consumer) Run(ctx context.Context, handle func(entity.ReservationEvent)) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		event, err := Decode(msg.Value)
		if err != nil {
			logger.Error().Err(err).Str("key", string(msg.Key)).Msg("skipping message")
			continue
		}
		handle(event)
	}
}

func Decode(payload []byte) (entity.ReservationEvent, error) {
	var event entity.ReservationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	switch event.Type {
	case TypeCreated, TypeUpdated, TypeCancelled:
		return event, nil
	default:
		return event, fmt.Errorf("unknown event type %q", event.Type)
	}
}
