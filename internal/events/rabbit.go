package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// RabbitPublisher sends events to a durable topic exchange.
type RabbitPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex // amqp channels are not safe for concurrent publishes
	ch *amqp.Channel
}

func Dial(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	p, err := NewRabbitPublisher(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}

	slog.Info("RabbitMQ publisher ready", "exchange", EventsExchange)
	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	body, err := json.Marshal(NewOrderPlacedEnvelope(ev))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderPlacedEventName, err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
