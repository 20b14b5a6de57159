package domain

import "time"

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "IDLE"
	CheckoutSubmitting CheckoutState = "SUBMITTING"
	CheckoutSucceeded  CheckoutState = "SUCCEEDED"
	CheckoutFailed     CheckoutState = "FAILED"
)

// CheckoutSnapshot is the frozen content of one checkout attempt. A retry
// builds a new snapshot from the cart as it is at that moment.
type CheckoutSnapshot struct {
	SessionID     string
	Items         []CartItem
	Totals        Totals
	PaymentMethod string
	TakenAt       time.Time
}

func NewCheckoutSnapshot(sessionID string, cart *Cart, totals Totals, paymentMethod string, now time.Time) CheckoutSnapshot {
	return CheckoutSnapshot{
		SessionID:     sessionID,
		Items:         cart.Items(),
		Totals:        totals,
		PaymentMethod: paymentMethod,
		TakenAt:       now,
	}
}
