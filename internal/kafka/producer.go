package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"eventhub/internal/events"
)

// Producer streams event lifecycle notifications to Kafka. The message key
// is the event id so all notifications for one event land in one partition.
type Producer struct {
	writer *kafka.Writer
	topics Topics
}

type Topics struct {
	EventCreated string
	EventUpdated string
	EventDeleted string
}

type message struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewProducer(brokers []string, topics Topics) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topics: topics}
}

func (p *Producer) PublishEventCreated(ctx context.Context, event events.Event) error {
	return p.publish(ctx, p.topics.EventCreated, event)
}

func (p *Producer) PublishEventUpdated(ctx context.Context, event events.Event) error {
	return p.publish(ctx, p.topics.EventUpdated, event)
}

func (p *Producer) PublishEventDeleted(ctx context.Context, event events.Event) error {
	return p.publish(ctx, p.topics.EventDeleted, event)
}

func (p *Producer) publish(ctx context.Context, topic string, event events.Event) error {
	value, err := json.Marshal(message{
		ID:        event.ID,
		Title:     event.Title,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.ID),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopPublisher satisfies events.Publisher when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishEventCreated(context.Context, events.Event) error { return nil }
func (NopPublisher) PublishEventUpdated(context.Context, events.Event) error { return nil }
func (NopPublisher) PublishEventDeleted(context.Context, events.Event) error { return nil }
