// Package pricing derives order totals from cart contents.
//
// Every function here is pure: totals are recomputed on demand and never
// stored alongside the cart.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// DefaultTaxRate is the flat 5% applied to the subtotal.
	DefaultTaxRate = decimal.NewFromFloat(0.05)

	// DefaultDeliveryFee is charged once per order regardless of size or distance.
	DefaultDeliveryFee = decimal.NewFromInt(20)

	ErrNegativeRate = errors.New("tax rate must not be negative")
	ErrNegativeFee  = errors.New("delivery fee must not be negative")
)

// taxPlaces is the number of decimal places tax is rounded to (whole currency units).
const taxPlaces = 0

// Item is one priced line: a unit price and how many of it.
type Item struct {
	Price    decimal.Decimal
	Quantity int
}

// Totals is the derived breakdown shown at checkout.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// Calculator holds the fixed policy inputs: tax rate and delivery fee.
type Calculator struct {
	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
}

// NewCalculator validates the policy and returns a Calculator.
func NewCalculator(taxRate, deliveryFee decimal.Decimal) (*Calculator, error) {
	if taxRate.IsNegative() {
		return nil, ErrNegativeRate
	}
	if deliveryFee.IsNegative() {
		return nil, ErrNegativeFee
	}
	return &Calculator{taxRate: taxRate, deliveryFee: deliveryFee}, nil
}

// Default returns the storefront policy: 5% tax, 20 units delivery.
func Default() *Calculator {
	return &Calculator{taxRate: DefaultTaxRate, deliveryFee: DefaultDeliveryFee}
}

// Subtotal is Σ(price × quantity).
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Tax rounds subtotal × rate half-up to whole units. Subtotals are never
// negative, so shopspring's half-away-from-zero is the same thing.
func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.taxRate).Round(taxPlaces)
}

func (c *Calculator) DeliveryFee() decimal.Decimal {
	return c.deliveryFee
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// GrandTotal is subtotal + delivery fee + tax.
func (c *Calculator) GrandTotal(items []Item) decimal.Decimal {
	return c.Totals(items).GrandTotal
}

// Totals computes the full breakdown in one pass.
func (c *Calculator) Totals(items []Item) Totals {
	subtotal := Subtotal(items)
	tax := c.Tax(subtotal)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: c.deliveryFee,
		Tax:         tax,
		GrandTotal:  subtotal.Add(c.deliveryFee).Add(tax),
	}
}
