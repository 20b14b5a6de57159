package controller

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"posterminal/internal/commons"
	apperrors "posterminal/internal/errors"
	"posterminal/internal/inventory/usecase"
)

type InventoryUseCase interface {
	Overview(ctx context.Context, query usecase.OverviewQuery) (*usecase.Overview, error)
	Catalog(ctx context.Context, category string) ([]usecase.CatalogEntry, error)
}

type OverviewResponse struct {
	TraceID string `json:"traceId"`
	*usecase.Overview
}

type CatalogResponse struct {
	TraceID  string                 `json:"traceId"`
	Category string                 `json:"category"`
	Products []usecase.CatalogEntry `json:"products"`
}

type InventoryController struct {
	useCase InventoryUseCase
	logger  *zap.Logger
}

func NewInventoryController(useCase InventoryUseCase, logger *zap.Logger) *InventoryController {
	return &InventoryController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *InventoryController) Overview(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	params := r.URL.Query()

	query := usecase.OverviewQuery{Search: params.Get("search")}
	if raw := params.Get("refresh"); raw != "" {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			commons.WriteError(w, logger, traceID, apperrors.NewValidationError("invalid refresh flag", apperrors.ValidationDetail{
				Field:   "refresh",
				Message: "refresh must be true or false",
			}))
			return
		}
		query.Refresh = refresh
	}

	overview, err := c.useCase.Overview(r.Context(), query)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, OverviewResponse{TraceID: traceID, Overview: overview})
}

func (c *InventoryController) Catalog(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	category := r.URL.Query().Get("category")

	products, err := c.useCase.Catalog(r.Context(), category)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	if category == "" {
		category = "all"
	}
	commons.WriteJSON(w, logger, http.StatusOK, CatalogResponse{
		TraceID:  traceID,
		Category: category,
		Products: products,
	})
}
