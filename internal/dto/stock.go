package dto

import "posterminal/internal/domain"

type AdjustmentPayload struct {
	ProductID  string `json:"productId"`
	LocationID string `json:"locationId"`
	QtyChange  int64  `json:"qtyChange"`
	Reason     string `json:"reason"`
}

func NewAdjustmentPayload(req domain.AdjustmentRequest) AdjustmentPayload {
	return AdjustmentPayload{
		ProductID:  req.ProductID(),
		LocationID: req.LocationID(),
		QtyChange:  req.Delta(),
		Reason:     req.Reason(),
	}
}

// AdjustmentResult mirrors the backend reply. Success is a pointer because
// some backend builds omit it on a plain 2xx.
type AdjustmentResult struct {
	Success        *bool                `json:"success,omitempty"`
	UpdatedBalance *domain.StockBalance `json:"updatedBalance,omitempty"`
	Message        string               `json:"message,omitempty"`
}

func (r AdjustmentResult) Failed() bool {
	return r.Success != nil && !*r.Success
}

type TransferPayload struct {
	ProductID      string `json:"productId"`
	FromLocationID string `json:"fromLocationId"`
	ToLocationID   string `json:"toLocationId"`
	Quantity       int64  `json:"quantity"`
	Reason         string `json:"reason"`
}

func NewTransferPayload(req domain.TransferRequest) TransferPayload {
	return TransferPayload{
		ProductID:      req.ProductID(),
		FromLocationID: req.FromLocationID(),
		ToLocationID:   req.ToLocationID(),
		Quantity:       req.Quantity(),
		Reason:         req.Reason(),
	}
}

type TransferResult struct {
	Success  *bool                 `json:"success,omitempty"`
	Message  string                `json:"message,omitempty"`
	Movement *domain.StockMove     `json:"movement,omitempty"`
	Balances []domain.StockBalance `json:"balances,omitempty"`
}

func (r TransferResult) Failed() bool {
	return r.Success != nil && !*r.Success
}
