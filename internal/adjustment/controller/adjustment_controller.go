package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"posterminal/internal/adjustment/usecase"
	"posterminal/internal/commons"
)

type AdjustmentUseCase interface {
	Adjust(ctx context.Context, sessionID string, form usecase.AdjustmentForm) (*usecase.AdjustmentOutcome, error)
	Transfer(ctx context.Context, sessionID string, form usecase.TransferForm) (*usecase.TransferOutcome, error)
}

type AdjustmentResponse struct {
	TraceID string `json:"traceId"`
	*usecase.AdjustmentOutcome
}

type TransferResponse struct {
	TraceID string `json:"traceId"`
	*usecase.TransferOutcome
}

// AdjustmentController accepts stock forms. Field rules live in the domain
// builders so both endpoints report the same validation details.
type AdjustmentController struct {
	useCase AdjustmentUseCase
	logger  *zap.Logger
}

func NewAdjustmentController(useCase AdjustmentUseCase, logger *zap.Logger) *AdjustmentController {
	return &AdjustmentController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *AdjustmentController) Adjust(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	sessionID := chi.URLParam(r, "sessionId")

	var form usecase.AdjustmentForm
	if err := commons.DecodeJSON(w, r, &form); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	outcome, err := c.useCase.Adjust(r.Context(), sessionID, form)
	if err != nil {
		logger.Warn("stock adjustment rejected",
			zap.String("sessionId", sessionID),
			zap.String("productId", form.ProductID),
			zap.Error(err))
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, AdjustmentResponse{TraceID: traceID, AdjustmentOutcome: outcome})
}

func (c *AdjustmentController) Transfer(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceLogger(c.logger)
	sessionID := chi.URLParam(r, "sessionId")

	var form usecase.TransferForm
	if err := commons.DecodeJSON(w, r, &form); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	outcome, err := c.useCase.Transfer(r.Context(), sessionID, form)
	if err != nil {
		logger.Warn("stock transfer rejected",
			zap.String("sessionId", sessionID),
			zap.String("productId", form.ProductID),
			zap.Error(err))
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, TransferResponse{TraceID: traceID, TransferOutcome: outcome})
}
