package usecase

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"posterminal/internal/domain"
	"posterminal/internal/dto"
	apperrors "posterminal/internal/errors"
	invservice "posterminal/internal/inventory/service"
)

const (
	KindAdjustment = "adjustment"
	KindTransfer   = "transfer"

	// IntentSet asks for an absolute on-hand level. It is resolved here into
	// an add or remove against the latest balance.
	IntentSet = "set"
)

type Backend interface {
	ListStockBalances(ctx context.Context) ([]domain.StockBalance, error)
	PostAdjustment(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error)
	PostTransfer(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error)
}

type Refresher interface {
	Refresh(ctx context.Context) (*invservice.Snapshot, error)
}

type Recorder interface {
	RecordAdjustment(kind string, success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordAdjustment(string, bool) {}

type AdjustmentForm struct {
	ProductID  string `json:"productId"`
	LocationID string `json:"locationId"`
	Type       string `json:"type"`
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason"`
}

type TransferForm struct {
	ProductID      string `json:"productId"`
	FromLocationID string `json:"fromLocationId"`
	ToLocationID   string `json:"toLocationId"`
	Quantity       int64  `json:"quantity"`
	Reason         string `json:"reason"`
}

type AdjustmentOutcome struct {
	ProductID      string               `json:"productId"`
	LocationID     string               `json:"locationId"`
	QtyChange      int64                `json:"qtyChange"`
	Reason         string               `json:"reason"`
	UpdatedBalance *domain.StockBalance `json:"updatedBalance,omitempty"`
	Message        string               `json:"message,omitempty"`
}

type TransferOutcome struct {
	ProductID      string                `json:"productId"`
	FromLocationID string                `json:"fromLocationId"`
	ToLocationID   string                `json:"toLocationId"`
	Quantity       int64                 `json:"quantity"`
	Reason         string                `json:"reason"`
	Movement       *domain.StockMove     `json:"movement,omitempty"`
	Balances       []domain.StockBalance `json:"balances,omitempty"`
	Message        string                `json:"message,omitempty"`
}

// AdjustmentUseCase submits stock adjustments and transfers. A session may
// have only one submission in flight at a time.
type AdjustmentUseCase struct {
	backend         Backend
	refresher       Refresher
	recorder        Recorder
	logger          *zap.Logger
	defaultLocation string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewAdjustmentUseCase(
	backend Backend,
	refresher Refresher,
	recorder Recorder,
	logger *zap.Logger,
	defaultLocation string,
) *AdjustmentUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AdjustmentUseCase{
		backend:         backend,
		refresher:       refresher,
		recorder:        recorder,
		logger:          logger,
		defaultLocation: defaultLocation,
		inFlight:        make(map[string]struct{}),
	}
}

func (uc *AdjustmentUseCase) Adjust(ctx context.Context, sessionID string, form AdjustmentForm) (*AdjustmentOutcome, error) {
	if strings.TrimSpace(form.LocationID) == "" {
		form.LocationID = uc.defaultLocation
	}

	isSet := strings.EqualFold(strings.TrimSpace(form.Type), IntentSet)

	var req domain.AdjustmentRequest
	if !isSet {
		intent, _ := domain.ParseAdjustmentIntent(form.Type)
		built, err := domain.BuildAdjustment(form.ProductID, form.LocationID, intent, form.Quantity, form.Reason)
		if err != nil {
			return nil, err
		}
		req = built
	}

	release, err := uc.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if isSet {
		if req, err = uc.buildSet(ctx, form); err != nil {
			return nil, err
		}
	}

	result, err := uc.backend.PostAdjustment(ctx, req)
	uc.recorder.RecordAdjustment(KindAdjustment, err == nil)
	if err != nil {
		uc.logger.Error("Stock adjustment failed",
			zap.String("sessionId", sessionID),
			zap.String("productId", req.ProductID()),
			zap.Int64("qtyChange", req.Delta()),
			zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Stock adjusted",
		zap.String("sessionId", sessionID),
		zap.String("productId", req.ProductID()),
		zap.String("locationId", req.LocationID()),
		zap.Int64("qtyChange", req.Delta()))
	uc.refresh(ctx)

	return &AdjustmentOutcome{
		ProductID:      req.ProductID(),
		LocationID:     req.LocationID(),
		QtyChange:      req.Delta(),
		Reason:         req.Reason(),
		UpdatedBalance: result.UpdatedBalance,
		Message:        result.Message,
	}, nil
}

func (uc *AdjustmentUseCase) Transfer(ctx context.Context, sessionID string, form TransferForm) (*TransferOutcome, error) {
	req, err := domain.BuildTransfer(form.ProductID, form.FromLocationID, form.ToLocationID, form.Quantity, form.Reason)
	if err != nil {
		return nil, err
	}

	release, err := uc.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := uc.backend.PostTransfer(ctx, req)
	uc.recorder.RecordAdjustment(KindTransfer, err == nil)
	if err != nil {
		uc.logger.Error("Stock transfer failed",
			zap.String("sessionId", sessionID),
			zap.String("productId", req.ProductID()),
			zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Stock transferred",
		zap.String("sessionId", sessionID),
		zap.String("productId", req.ProductID()),
		zap.String("from", req.FromLocationID()),
		zap.String("to", req.ToLocationID()),
		zap.Int64("quantity", req.Quantity()))
	uc.refresh(ctx)

	return &TransferOutcome{
		ProductID:      req.ProductID(),
		FromLocationID: req.FromLocationID(),
		ToLocationID:   req.ToLocationID(),
		Quantity:       req.Quantity(),
		Reason:         req.Reason(),
		Movement:       result.Movement,
		Balances:       result.Balances,
		Message:        result.Message,
	}, nil
}

// buildSet turns a target level into a signed change against the on-hand
// quantity the backend reports right now. A missing balance counts as zero.
func (uc *AdjustmentUseCase) buildSet(ctx context.Context, form AdjustmentForm) (domain.AdjustmentRequest, error) {
	productID := strings.TrimSpace(form.ProductID)
	locationID := strings.TrimSpace(form.LocationID)

	var details []apperrors.ValidationDetail
	if productID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId is required"})
	}
	if locationID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "locationId", Message: "locationId is required"})
	}
	if form.Quantity < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must not be negative"})
	}
	if strings.TrimSpace(form.Reason) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "reason", Message: "reason is required"})
	}
	if len(details) > 0 {
		return domain.AdjustmentRequest{}, apperrors.NewValidationError("invalid stock adjustment", details...)
	}

	balances, err := uc.backend.ListStockBalances(ctx)
	if err != nil {
		return domain.AdjustmentRequest{}, err
	}

	var onHand int64
	for _, b := range balances {
		if b.ProductID == productID && b.LocationID == locationID {
			onHand = int64(b.OnHandQty)
			break
		}
	}

	diff := form.Quantity - onHand
	switch {
	case diff > 0:
		return domain.BuildAdjustment(productID, locationID, domain.IntentAdd, diff, form.Reason)
	case diff < 0:
		return domain.BuildAdjustment(productID, locationID, domain.IntentRemove, -diff, form.Reason)
	default:
		return domain.AdjustmentRequest{}, apperrors.NewValidationError("quantity change cannot be zero", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "stock is already at the requested level",
		})
	}
}

func (uc *AdjustmentUseCase) refresh(ctx context.Context) {
	if uc.refresher == nil {
		return
	}
	if _, err := uc.refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
		uc.logger.Warn("Inventory refresh after stock change failed", zap.Error(err))
	}
}

func (uc *AdjustmentUseCase) acquire(sessionID string) (func(), error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.inFlight[sessionID]; busy {
		return nil, apperrors.NewConflictError("a stock change is already being submitted for session " + sessionID)
	}
	uc.inFlight[sessionID] = struct{}{}

	return func() {
		uc.mu.Lock()
		delete(uc.inFlight, sessionID)
		uc.mu.Unlock()
	}, nil
}
