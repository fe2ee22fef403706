package cart

import (
	"github.com/shopspring/decimal"
)

// Cart is the ordered collection of line items for one session. It is a pure
// state machine and is not safe for concurrent use; the Manager serializes
// access per session.
//
// Invariants held across every operation:
//   - keys are unique within the cart
//   - every present line has qty >= 1 (a decrement to zero removes the line)
//   - insertion order is stable; quantity changes never reorder lines
type Cart struct {
	items []LineItem
	index map[ItemKey]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[ItemKey]int)}
}

// Add merges the item into an existing line with the same key, or appends a
// new line. Malformed items are rejected without touching state.
func (c *Cart) Add(item LineItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	if pos, ok := c.index[item.Key]; ok {
		c.items[pos].Qty += item.Qty
		return nil
	}
	c.index[item.Key] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Decrement lowers the quantity of the line with the given key. Missing keys
// are a no-op. Reaching qty <= 0 removes the line entirely; a zero-quantity
// row is never observable.
func (c *Cart) Decrement(key ItemKey, qty int) {
	if qty < 1 {
		qty = 1
	}
	pos, ok := c.index[key]
	if !ok {
		return
	}
	if c.items[pos].Qty-qty <= 0 {
		c.removeAt(pos)
		return
	}
	c.items[pos].Qty -= qty
}

// Remove deletes the line with the given key regardless of quantity.
// Missing keys are a no-op, so repeated removes are safe.
func (c *Cart) Remove(key ItemKey) {
	if pos, ok := c.index[key]; ok {
		c.removeAt(pos)
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[ItemKey]int)
}

// ItemCount sums quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Qty
	}
	return count
}

// Subtotal sums price*qty across all lines, recomputed fresh on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// LineTotal returns price*qty for the line with the given key, or zero when
// the line is absent.
func (c *Cart) LineTotal(key ItemKey) decimal.Decimal {
	if pos, ok := c.index[key]; ok {
		return c.items[pos].LineTotal()
	}
	return decimal.Zero
}

// Qty returns the current quantity for the key, zero when absent.
func (c *Cart) Qty(key ItemKey) int {
	if pos, ok := c.index[key]; ok {
		return c.items[pos].Qty
	}
	return 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) removeAt(pos int) {
	delete(c.index, c.items[pos].Key)
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].Key] = i
	}
}
