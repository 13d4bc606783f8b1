package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() OrderPlaced {
	return OrderPlaced{
		OrderID: "o-1",
		UserID:  "u-1",
		Items: []OrderPlacedItem{
			{MenuItemID: "a", Name: "Veg Thali", Quantity: 2, PriceAtOrder: decimal.NewFromInt(120)},
		},
		Subtotal:      decimal.NewFromInt(240),
		DeliveryFee:   decimal.NewFromInt(20),
		Tax:           decimal.NewFromInt(12),
		Total:         decimal.NewFromInt(272),
		PaymentMethod: "upi",
		PlacedAt:      time.Now().UTC(),
	}
}

func TestNewOrderPlacedEnvelope(t *testing.T) {
	env := NewOrderPlacedEnvelope(sampleOrder())

	assert.Equal(t, OrderPlacedEventName, env.EventName)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "u-1", env.PartitionKey)

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"price_at_order":"120"`)
	assert.Contains(t, string(body), `"event_name":"OrderPlaced"`)

	other := NewOrderPlacedEnvelope(sampleOrder())
	assert.NotEqual(t, env.EventID, other.EventID)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	require.NoError(t, p.PublishOrderPlaced(context.Background(), sampleOrder()))
	require.NoError(t, p.Close())
}

func TestRabbitPublisher(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		t.Skip("AMQP_URL not set, skipping integration test")
	}

	p, err := Dial(url)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.PublishOrderPlaced(context.Background(), sampleOrder()))
}
