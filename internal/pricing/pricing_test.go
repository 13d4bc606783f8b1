package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestTotals_CheckoutExample(t *testing.T) {
	calc := Default()

	totals := calc.Totals([]Item{
		{Price: d(120), Quantity: 2},
		{Price: d(180), Quantity: 1},
	})

	assert.True(t, totals.Subtotal.Equal(d(420)), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(d(21)), "tax %s", totals.Tax)
	assert.True(t, totals.DeliveryFee.Equal(d(20)), "fee %s", totals.DeliveryFee)
	assert.True(t, totals.GrandTotal.Equal(d(461)), "grand total %s", totals.GrandTotal)
}

func TestTax_RoundsHalfUp(t *testing.T) {
	calc := Default()

	cases := []struct {
		subtotal string
		want     int64
	}{
		{"0", 0},
		{"10", 1},      // 0.5 -> 1
		{"29", 1},      // 1.45 -> 1
		{"30", 2},      // 1.5 -> 2
		{"249", 12},    // 12.45 -> 12
		{"299.99", 15}, // 14.9995 -> 15
	}

	for _, tc := range cases {
		got := calc.Tax(decimal.RequireFromString(tc.subtotal))
		assert.True(t, got.Equal(d(tc.want)), "tax(%s) = %s, want %d", tc.subtotal, got, tc.want)
	}
}

func TestDeliveryFee_IndependentOfCart(t *testing.T) {
	calc := Default()

	small := calc.Totals([]Item{{Price: d(10), Quantity: 1}})
	large := calc.Totals([]Item{{Price: d(10), Quantity: 50}})
	empty := calc.Totals(nil)

	assert.True(t, small.DeliveryFee.Equal(large.DeliveryFee))
	assert.True(t, empty.DeliveryFee.Equal(d(20)))
	assert.True(t, empty.Subtotal.IsZero())
}

func TestSubtotal_OrderIndependent(t *testing.T) {
	a := []Item{{Price: d(120), Quantity: 2}, {Price: d(180), Quantity: 1}, {Price: decimal.RequireFromString("49.5"), Quantity: 3}}
	b := []Item{a[2], a[0], a[1]}

	assert.True(t, Subtotal(a).Equal(Subtotal(b)))
}

func TestNewCalculator_Validation(t *testing.T) {
	_, err := NewCalculator(d(-1), d(20))
	require.ErrorIs(t, err, ErrNegativeRate)

	_, err = NewCalculator(DefaultTaxRate, d(-5))
	require.ErrorIs(t, err, ErrNegativeFee)

	calc, err := NewCalculator(decimal.NewFromFloat(0.18), d(0))
	require.NoError(t, err)

	totals := calc.Totals([]Item{{Price: d(100), Quantity: 1}})
	assert.True(t, totals.GrandTotal.Equal(d(118)))
}
