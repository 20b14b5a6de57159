package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"posterminal/internal/checkout/usecase"
	"posterminal/internal/commons"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, sessionID, paymentMethod string) (*usecase.CheckoutStatus, error)
	Status(sessionID string) usecase.CheckoutStatus
}

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

type CheckoutResponse struct {
	TraceID string `json:"traceId"`
	usecase.CheckoutStatus
}

type CheckoutController struct {
	useCase CheckoutUseCase
	logger  *zap.Logger
}

func NewCheckoutController(useCase CheckoutUseCase, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	sessionID := chi.URLParam(r, "sessionId")

	// Decode and validate request body
	var req CheckoutRequest
	if err := commons.DecodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid checkout request", zap.String("sessionId", sessionID), zap.Error(err))
		commons.WriteError(w, logger, traceID, err)
		return
	}

	// Call use case
	status, err := c.useCase.Checkout(r.Context(), sessionID, req.PaymentMethod)
	if err != nil {
		logger.Warn("checkout failed", zap.String("sessionId", sessionID), zap.Error(err))
		commons.WriteError(w, logger, traceID, err)
		return
	}

	logger.Info("checkout completed",
		zap.String("sessionId", sessionID),
		zap.String("orderId", status.OrderID))
	commons.WriteJSON(w, logger, http.StatusCreated, CheckoutResponse{TraceID: traceID, CheckoutStatus: *status})
}

func (c *CheckoutController) Status(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	status := c.useCase.Status(chi.URLParam(r, "sessionId"))
	commons.WriteJSON(w, logger, http.StatusOK, CheckoutResponse{TraceID: traceID, CheckoutStatus: status})
}
