package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"posterminal/internal/adjustment/usecase"
	"posterminal/internal/dto"
	apperrors "posterminal/internal/errors"
)

type mockAdjustmentUseCase struct {
	AdjustFunc   func(ctx context.Context, sessionID string, form usecase.AdjustmentForm) (*usecase.AdjustmentOutcome, error)
	TransferFunc func(ctx context.Context, sessionID string, form usecase.TransferForm) (*usecase.TransferOutcome, error)
}

func (m *mockAdjustmentUseCase) Adjust(ctx context.Context, sessionID string, form usecase.AdjustmentForm) (*usecase.AdjustmentOutcome, error) {
	return m.AdjustFunc(ctx, sessionID, form)
}

func (m *mockAdjustmentUseCase) Transfer(ctx context.Context, sessionID string, form usecase.TransferForm) (*usecase.TransferOutcome, error) {
	return m.TransferFunc(ctx, sessionID, form)
}

func newRouter(uc AdjustmentUseCase) http.Handler {
	c := NewAdjustmentController(uc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/sessions/{sessionId}/adjustments", c.Adjust)
	r.Post("/sessions/{sessionId}/transfers", c.Transfer)
	return r
}

func TestAdjustmentController_Adjust(t *testing.T) {
	var gotSession string
	var gotForm usecase.AdjustmentForm
	uc := &mockAdjustmentUseCase{
		AdjustFunc: func(ctx context.Context, sessionID string, form usecase.AdjustmentForm) (*usecase.AdjustmentOutcome, error) {
			gotSession, gotForm = sessionID, form
			return &usecase.AdjustmentOutcome{ProductID: form.ProductID, LocationID: "LOC-1", QtyChange: -2, Reason: form.Reason}, nil
		},
	}

	rec := httptest.NewRecorder()
	body := `{"productId":"p1","type":"remove","quantity":2,"reason":"Damaged"}`
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/adjustments", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s1", gotSession)
	assert.Equal(t, usecase.AdjustmentForm{ProductID: "p1", Type: "remove", Quantity: 2, Reason: "Damaged"}, gotForm)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(-2), resp["qtyChange"])
	assert.NotEmpty(t, resp["traceId"])
}

func TestAdjustmentController_AdjustValidationDetails(t *testing.T) {
	uc := &mockAdjustmentUseCase{
		AdjustFunc: func(ctx context.Context, sessionID string, form usecase.AdjustmentForm) (*usecase.AdjustmentOutcome, error) {
			return nil, apperrors.NewValidationError("invalid stock adjustment",
				apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be greater than zero"},
				apperrors.ValidationDetail{Field: "reason", Message: "reason is required"},
			)
		},
	}

	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/adjustments", strings.NewReader(`{"productId":"p1","type":"add"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "quantity", resp.Details[0].Field)
	assert.Equal(t, "reason", resp.Details[1].Field)
}

func TestAdjustmentController_MalformedBody(t *testing.T) {
	uc := &mockAdjustmentUseCase{}

	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/adjustments", strings.NewReader(`{"quantity":"lots"`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustmentController_TransferInFlight(t *testing.T) {
	uc := &mockAdjustmentUseCase{
		TransferFunc: func(ctx context.Context, sessionID string, form usecase.TransferForm) (*usecase.TransferOutcome, error) {
			return nil, apperrors.NewConflictError("a stock change is already being submitted for session " + sessionID)
		},
	}

	rec := httptest.NewRecorder()
	body := `{"productId":"p1","fromLocationId":"A","toLocationId":"B","quantity":1,"reason":"Move"}`
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/transfers", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdjustmentController_Transfer(t *testing.T) {
	var gotForm usecase.TransferForm
	uc := &mockAdjustmentUseCase{
		TransferFunc: func(ctx context.Context, sessionID string, form usecase.TransferForm) (*usecase.TransferOutcome, error) {
			gotForm = form
			return &usecase.TransferOutcome{ProductID: form.ProductID, Quantity: form.Quantity}, nil
		},
	}

	rec := httptest.NewRecorder()
	body := `{"productId":"p1","fromLocationId":"A","toLocationId":"B","quantity":3,"reason":"Move"}`
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/transfers", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, usecase.TransferForm{ProductID: "p1", FromLocationID: "A", ToLocationID: "B", Quantity: 3, Reason: "Move"}, gotForm)
}
