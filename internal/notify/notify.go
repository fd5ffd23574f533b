package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	pattern    = "moment.ingest"
	routingKey = "status"
)

// Ingest outcomes
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// EventData is the inner payload of an ingest event.
type EventData struct {
	MediaKey  string `json:"mediaKey,omitempty"`
	MomentID  string `json:"momentId,omitempty"`
	Status    string `json:"status"`
	ErrorKind string `json:"errorKind,omitempty"`
	ErrorMsg  string `json:"errorMsg,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Event is the full message envelope.
type Event struct {
	Pattern string    `json:"pattern"`
	Data    EventData `json:"data"`
}

func NewEvent(data EventData) *Event {
	return &Event{Pattern: pattern, Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Noop discards events; used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, *Event) error { return nil }
func (Noop) Close() error                          { return nil }

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
}

// NewRabbitPublisher connects to url and declares a durable topic exchange.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// NewRabbitPublisherWithChannel wraps an open channel.
func NewRabbitPublisherWithChannel(ch Channel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{channel: ch, exchange: exchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event *Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
