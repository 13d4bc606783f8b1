package orders

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCard, PaymentUPI, PaymentCash:
		return true
	}
	return false
}

var (
	ErrNotFound              = errors.New("order not found")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrInvalidPaymentMethod  = errors.New("payment_method must be card, upi or cash")
	ErrDeliveryAddressNeeded = errors.New("delivery_address is required")
)

// Order is a placed checkout. Money fields are fixed at placement and do not
// follow later menu price changes.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Status          Status          `json:"status"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Item is one order line. MenuItemID is empty once the dish has been deleted
// from the menu.
type Item struct {
	ID           string          `json:"id"`
	MenuItemID   string          `json:"menu_item_id,omitempty"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
