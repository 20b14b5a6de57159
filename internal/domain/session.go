package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartSession is the durable state of one terminal's cart: the items and
// the discount entered against them.
type CartSession struct {
	ID                 string          `json:"id"`
	Cart               *Cart           `json:"cart"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func NewCartSession(id string, now time.Time) *CartSession {
	return &CartSession{
		ID:                 id,
		Cart:               NewCart(),
		DiscountPercentage: decimal.Zero,
		UpdatedAt:          now,
	}
}

func (s *CartSession) Totals(tax TaxFunc) Totals {
	return ComputeTotals(s.Cart, s.DiscountPercentage, tax)
}

// Settle removes what an order took from the cart and clears the discount.
// Items added after the order was taken stay in the cart.
func (s *CartSession) Settle(ordered []CartItem) {
	s.Cart.Subtract(ordered)
	s.DiscountPercentage = decimal.Zero
}

// Clone returns a deep copy so a failed save can leave the stored state
// as it was.
func (s *CartSession) Clone() *CartSession {
	clone := *s
	clone.Cart = NewCart(s.Cart.Items()...)
	return &clone
}

// DecodeCartSession restores a session written by json.Marshal. A missing
// cart decodes as an empty one.
func DecodeCartSession(data []byte) (*CartSession, error) {
	var session CartSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding cart session: %w", err)
	}
	if session.Cart == nil {
		session.Cart = NewCart()
	}
	return &session, nil
}
