package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"posterminal/internal/domain"
)

type CheckoutItem struct {
	ProductID string       `json:"productId"`
	VariantID string       `json:"variantId,omitempty"`
	Name      string       `json:"name"`
	SKU       string       `json:"sku"`
	Quantity  int64        `json:"quantity"`
	UnitPrice domain.Money `json:"unitPrice"`
	LineTotal domain.Money `json:"lineTotal"`
}

type CheckoutRequest struct {
	CartItems      []CheckoutItem `json:"cartItems"`
	Subtotal       domain.Money   `json:"subtotal"`
	DiscountAmount domain.Money   `json:"discountAmount"`
	Tax            domain.Money   `json:"tax"`
	Total          domain.Money   `json:"total"`
	PaymentMethod  string         `json:"paymentMethod"`
}

func NewCheckoutRequest(snapshot domain.CheckoutSnapshot) CheckoutRequest {
	items := make([]CheckoutItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		ci := CheckoutItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			SKU:       item.Product.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			LineTotal: item.LineTotal(),
		}
		if item.Variant != nil {
			ci.VariantID = item.Variant.ID
		}
		items[i] = ci
	}

	return CheckoutRequest{
		CartItems:      items,
		Subtotal:       snapshot.Totals.Subtotal,
		DiscountAmount: snapshot.Totals.DiscountAmount,
		Tax:            snapshot.Totals.Tax,
		Total:          snapshot.Totals.Total,
		PaymentMethod:  snapshot.PaymentMethod,
	}
}

// OrderID is the backend's order identifier. It arrives as a string or as
// a JSON number depending on the backend build.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding orderId: %w", err)
		}
		*id = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding orderId: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("decoding orderId %s: not an integer", data)
	}
	*id = OrderID(n.String())
	return nil
}

type CheckoutResult struct {
	Success *bool   `json:"success,omitempty"`
	OrderID OrderID `json:"orderId"`
	Message string  `json:"message,omitempty"`
}
