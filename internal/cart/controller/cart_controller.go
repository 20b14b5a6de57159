package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartservice "posterminal/internal/cart/service"
	"posterminal/internal/commons"
)

type CartService interface {
	Create(ctx context.Context) (*cartservice.CartView, error)
	View(ctx context.Context, sessionID string) (*cartservice.CartView, error)
	AddItem(ctx context.Context, sessionID, productID, variantID string) (*cartservice.CartView, error)
	ChangeQuantity(ctx context.Context, sessionID, productID string, delta int64) (*cartservice.CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*cartservice.CartView, error)
	SetDiscount(ctx context.Context, sessionID string, percentage decimal.Decimal) (*cartservice.CartView, error)
	Clear(ctx context.Context, sessionID string) (*cartservice.CartView, error)
}

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId"`
}

type ChangeQuantityRequest struct {
	Delta int64 `json:"delta" validate:"ne=0"`
}

// DiscountRequest accepts the percentage as a JSON string or number.
type DiscountRequest struct {
	Percentage *decimal.Decimal `json:"percentage" validate:"required"`
}

type CartResponse struct {
	TraceID string `json:"traceId"`
	cartservice.CartView
}

type CartController struct {
	service CartService
	logger  *zap.Logger
}

func NewCartController(service CartService, logger *zap.Logger) *CartController {
	return &CartController{
		service: service,
		logger:  logger,
	}
}

func (c *CartController) CreateSession(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	view, err := c.service.Create(r.Context())
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusCreated, view)
}

func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	view, err := c.service.View(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	sessionID := chi.URLParam(r, "sessionId")

	var req AddItemRequest
	if err := commons.DecodeJSON(w, r, &req); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	view, err := c.service.AddItem(r.Context(), sessionID, req.ProductID, req.VariantID)
	if err != nil {
		logger.Warn("add item failed",
			zap.String("sessionId", sessionID),
			zap.String("productId", req.ProductID),
			zap.Error(err))
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	var req ChangeQuantityRequest
	if err := commons.DecodeJSON(w, r, &req); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	view, err := c.service.ChangeQuantity(r.Context(), chi.URLParam(r, "sessionId"), chi.URLParam(r, "productId"), req.Delta)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	view, err := c.service.RemoveItem(r.Context(), chi.URLParam(r, "sessionId"), chi.URLParam(r, "productId"))
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) SetDiscount(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	var req DiscountRequest
	if err := commons.DecodeJSON(w, r, &req); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	view, err := c.service.SetDiscount(r.Context(), chi.URLParam(r, "sessionId"), *req.Percentage)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)

	view, err := c.service.Clear(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	c.writeView(w, logger, traceID, http.StatusOK, view)
}

func (c *CartController) writeView(w http.ResponseWriter, logger *zap.Logger, traceID string, status int, view *cartservice.CartView) {
	commons.WriteJSON(w, logger, status, CartResponse{TraceID: traceID, CartView: *view})
}
