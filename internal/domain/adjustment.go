package domain

import (
	"strings"

	apperrors "posterminal/internal/errors"
)

type AdjustmentIntent string

const (
	IntentAdd    AdjustmentIntent = "add"
	IntentRemove AdjustmentIntent = "remove"
)

func ParseAdjustmentIntent(s string) (AdjustmentIntent, bool) {
	switch AdjustmentIntent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentAdd:
		return IntentAdd, true
	case IntentRemove:
		return IntentRemove, true
	default:
		return "", false
	}
}

// AdjustmentRequest is a validated, signed stock change for one location.
type AdjustmentRequest struct {
	productID  string
	locationID string
	delta      int64
	reason     string
}

func (r AdjustmentRequest) ProductID() string  { return r.productID }
func (r AdjustmentRequest) LocationID() string { return r.locationID }
func (r AdjustmentRequest) Delta() int64       { return r.delta }
func (r AdjustmentRequest) Reason() string     { return r.reason }

// BuildAdjustment validates user input and turns an add/remove intent into
// a signed delta. There is no "set" intent: callers needing an absolute
// level must compute the delta from a current balance first.
func BuildAdjustment(productID, locationID string, intent AdjustmentIntent, quantity int64, reason string) (AdjustmentRequest, error) {
	productID = strings.TrimSpace(productID)
	locationID = strings.TrimSpace(locationID)
	reason = strings.TrimSpace(reason)

	var details []apperrors.ValidationDetail
	if productID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId is required"})
	}
	if locationID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "locationId", Message: "locationId is required"})
	}
	if quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be greater than zero"})
	}
	if reason == "" {
		details = append(details, apperrors.ValidationDetail{Field: "reason", Message: "reason is required"})
	}

	var delta int64
	switch intent {
	case IntentAdd:
		delta = quantity
	case IntentRemove:
		delta = -quantity
	default:
		details = append(details, apperrors.ValidationDetail{Field: "type", Message: "type must be one of add, remove"})
	}

	if len(details) > 0 {
		return AdjustmentRequest{}, apperrors.NewValidationError("invalid stock adjustment", details...)
	}
	if delta == 0 {
		return AdjustmentRequest{}, apperrors.NewValidationError("quantity change cannot be zero", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity change cannot be zero",
		})
	}

	return AdjustmentRequest{
		productID:  productID,
		locationID: locationID,
		delta:      delta,
		reason:     reason,
	}, nil
}

type TransferRequest struct {
	productID      string
	fromLocationID string
	toLocationID   string
	quantity       int64
	reason         string
}

func (r TransferRequest) ProductID() string      { return r.productID }
func (r TransferRequest) FromLocationID() string { return r.fromLocationID }
func (r TransferRequest) ToLocationID() string   { return r.toLocationID }
func (r TransferRequest) Quantity() int64        { return r.quantity }
func (r TransferRequest) Reason() string         { return r.reason }

func BuildTransfer(productID, fromLocationID, toLocationID string, quantity int64, reason string) (TransferRequest, error) {
	productID = strings.TrimSpace(productID)
	fromLocationID = strings.TrimSpace(fromLocationID)
	toLocationID = strings.TrimSpace(toLocationID)
	reason = strings.TrimSpace(reason)

	var details []apperrors.ValidationDetail
	if productID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId is required"})
	}
	if fromLocationID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "fromLocationId", Message: "fromLocationId is required"})
	}
	if toLocationID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "toLocationId", Message: "toLocationId is required"})
	}
	if fromLocationID != "" && fromLocationID == toLocationID {
		details = append(details, apperrors.ValidationDetail{Field: "toLocationId", Message: "toLocationId must differ from fromLocationId"})
	}
	if quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be greater than zero"})
	}
	if reason == "" {
		details = append(details, apperrors.ValidationDetail{Field: "reason", Message: "reason is required"})
	}

	if len(details) > 0 {
		return TransferRequest{}, apperrors.NewValidationError("invalid stock transfer", details...)
	}

	return TransferRequest{
		productID:      productID,
		fromLocationID: fromLocationID,
		toLocationID:   toLocationID,
		quantity:       quantity,
		reason:         reason,
	}, nil
}
