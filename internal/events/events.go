// Package events publishes storefront domain events to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventsExchange          = "upahar.events"
	OrderPlacedRoutingKey   = "order.placed.v1"
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	producer                = "upahar-api"
)

// Publisher is implemented by RabbitPublisher and NopPublisher.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
	Close() error
}

type Envelope struct {
	EventName    string      `json:"event_name"`
	EventVersion int         `json:"event_version"`
	EventID      string      `json:"event_id"`
	Producer     string      `json:"producer"`
	PartitionKey string      `json:"partition_key"`
	OccurredAt   time.Time   `json:"occurred_at"`
	Payload      OrderPlaced `json:"payload"`
}

type OrderPlaced struct {
	OrderID       string            `json:"order_id"`
	UserID        string            `json:"user_id"`
	Items         []OrderPlacedItem `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	DeliveryFee   decimal.Decimal   `json:"delivery_fee"`
	Tax           decimal.Decimal   `json:"tax"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	PlacedAt      time.Time         `json:"placed_at"`
}

type OrderPlacedItem struct {
	MenuItemID   string          `json:"menu_item_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

// NewOrderPlacedEnvelope wraps ev, keyed by user so one customer's orders stay ordered.
func NewOrderPlacedEnvelope(ev OrderPlaced) Envelope {
	return Envelope{
		EventName:    OrderPlacedEventName,
		EventVersion: OrderPlacedEventVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: ev.UserID,
		OccurredAt:   time.Now().UTC(),
		Payload:      ev,
	}
}

// NopPublisher drops every event. Used when AMQP_URL is not set.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
