package cart

import (
	"github.com/shopspring/decimal"

	"upahar/internal/menu"
	"upahar/internal/pricing"
)

// Line is one dish in the cart. Its ID is the menu item id, so a cart holds
// at most one line per dish.
type Line struct {
	ID       string        `json:"id"`
	Item     menu.MenuItem `json:"item"`
	Quantity int           `json:"quantity"`
}

// Cart is the quantity-keyed set of lines for one session. It is not safe for
// concurrent use; Service guards each cart with its own lock.
type Cart struct {
	lines []Line
	index map[string]int
}

// New returns a cart holding lines. Duplicate ids are folded together and
// lines with a quantity below 1 are dropped.
func New(lines ...Line) *Cart {
	c := &Cart{index: make(map[string]int)}
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if l.ID == "" {
			l.ID = l.Item.ID
		}
		if i, ok := c.index[l.ID]; ok {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.index[l.ID] = len(c.lines)
		c.lines = append(c.lines, l)
	}
	return c
}

// Add puts quantity units of item in the cart, growing the existing line if
// there is one. Quantity must be at least 1.
func (c *Cart) Add(item menu.MenuItem, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Quantity += quantity
		return c.lines[i], nil
	}

	l := Line{ID: item.ID, Item: item, Quantity: quantity}
	c.index[l.ID] = len(c.lines)
	c.lines = append(c.lines, l)
	return l, nil
}

// Remove deletes the line and reports whether it was there.
func (c *Cart) Remove(lineID string) bool {
	i, ok := c.index[lineID]
	if !ok {
		return false
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, lineID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ID] = j
	}
	return true
}

// SetQuantity replaces a line's quantity. Anything below 1 removes the line.
// It reports whether the cart changed.
func (c *Cart) SetQuantity(lineID string, quantity int) bool {
	if quantity < 1 {
		return c.Remove(lineID)
	}

	i, ok := c.index[lineID]
	if !ok {
		return false
	}
	if c.lines[i].Quantity == quantity {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

// Line returns the line with the given id.
func (c *Cart) Line(lineID string) (Line, bool) {
	i, ok := c.index[lineID]
	if !ok {
		return Line{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalItemCount is the sum of all quantities, shown on the cart badge.
func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice is the cart subtotal.
func (c *Cart) TotalPrice() decimal.Decimal {
	return pricing.Subtotal(c.PricingItems())
}

func (c *Cart) PricingItems() []pricing.Item {
	items := make([]pricing.Item, len(c.lines))
	for i, l := range c.lines {
		items[i] = pricing.Item{Price: l.Item.Price, Quantity: l.Quantity}
	}
	return items
}
