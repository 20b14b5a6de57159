package domain

import (
	"encoding/json"
	"math"
)

type CartItem struct {
	Product  Product         `json:"product"`
	Variant  *ProductVariant `json:"variant,omitempty"`
	Quantity int64           `json:"quantity"`
}

func (i CartItem) LineTotal() Money {
	return i.Product.Price.MulQty(i.Quantity)
}

// Cart holds one entry per product id, in the order products were first
// added. Quantities are always positive: an entry that drops to zero is
// removed.
type Cart struct {
	items []CartItem
}

func NewCart(items ...CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		if item.Quantity <= 0 || c.indexOf(item.Product.ID) >= 0 {
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem increments the existing entry for product.ID or appends a new
// entry with quantity 1. The variant of the first add is kept.
func (c *Cart) AddItem(product Product, variant *ProductVariant) {
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, CartItem{
		Product:  product,
		Variant:  variant,
		Quantity: 1,
	})
}

// ChangeQuantity applies delta, floors at zero and drops the entry at zero.
// Growth saturates at math.MaxInt64. Unknown product ids are ignored.
func (c *Cart) ChangeQuantity(productID string, delta int64) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity + delta
	if delta > 0 && q < c.items[i].Quantity {
		q = math.MaxInt64
	}
	if q <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = q
}

// Subtract takes the given quantities off the matching entries, dropping any
// that reach zero. Entries not listed are left alone.
func (c *Cart) Subtract(items []CartItem) {
	for _, item := range items {
		if item.Quantity > 0 {
			c.ChangeQuantity(item.Product.ID, -item.Quantity)
		}
	}
}

func (c *Cart) RemoveItem(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Quantity(productID string) int64 {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Subtotal() Money {
	subtotal := ZeroMoney()
	for _, item := range c.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func (c *Cart) ItemCount() int64 {
	var n int64
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []CartItem{}
	}
	return json.Marshal(items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = *NewCart(items...)
	return nil
}
