package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	cartservice "posterminal/internal/cart/service"
	"posterminal/internal/domain"
	"posterminal/internal/dto"
	apperrors "posterminal/internal/errors"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// settleTimeout bounds clearing the cart after the backend has confirmed an
// order. It runs on its own budget so a slow backend reply cannot leave a
// paid cart behind.
const settleTimeout = 5 * time.Second

type Carts interface {
	Get(ctx context.Context, sessionID string) (*domain.CartSession, error)
	Settle(ctx context.Context, sessionID string, ordered []domain.CartItem) (*cartservice.CartView, error)
	Tax() domain.TaxFunc
}

type Backend interface {
	PostCheckout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResult, error)
}

type Recorder interface {
	RecordCheckout(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCheckout(string) {}

type CheckoutStatus struct {
	SessionID     string               `json:"sessionId"`
	State         domain.CheckoutState `json:"state"`
	OrderID       string               `json:"orderId,omitempty"`
	PaymentMethod string               `json:"paymentMethod,omitempty"`
	Totals        *domain.Totals       `json:"totals,omitempty"`
	Error         string               `json:"error,omitempty"`
	SubmittedAt   time.Time            `json:"submittedAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// CheckoutUseCase submits carts to the backend. At most one checkout per
// session is in flight; the ordered items leave the cart only after the
// backend returns an order id.
type CheckoutUseCase struct {
	carts          Carts
	backend        Backend
	recorder       Recorder
	logger         *zap.Logger
	paymentMethods []string
	timeout        time.Duration
	now            func() time.Time

	mu       sync.Mutex
	statuses map[string]CheckoutStatus
}

func NewCheckoutUseCase(
	carts Carts,
	backend Backend,
	recorder Recorder,
	logger *zap.Logger,
	paymentMethods []string,
	timeout time.Duration,
) *CheckoutUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CheckoutUseCase{
		carts:          carts,
		backend:        backend,
		recorder:       recorder,
		logger:         logger,
		paymentMethods: paymentMethods,
		timeout:        timeout,
		now:            time.Now,
		statuses:       make(map[string]CheckoutStatus),
	}
}

func (uc *CheckoutUseCase) Checkout(ctx context.Context, sessionID, paymentMethod string) (*CheckoutStatus, error) {
	method, ok := uc.matchPaymentMethod(paymentMethod)
	if !ok {
		return nil, apperrors.NewValidationError("unsupported payment method", apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod must be one of: " + strings.Join(uc.paymentMethods, ", "),
		})
	}

	previous, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}

	session, err := uc.carts.Get(ctx, sessionID)
	if err != nil {
		uc.restore(sessionID, previous)
		return nil, err
	}

	totals := session.Totals(uc.carts.Tax())
	if !totals.CanCheckout() {
		uc.restore(sessionID, previous)
		uc.recorder.RecordCheckout(OutcomeRejected)
		return nil, apperrors.NewValidationError("cart total must be greater than zero", apperrors.ValidationDetail{
			Field:   "total",
			Message: "checkout requires a positive total",
		})
	}

	snapshot := domain.NewCheckoutSnapshot(sessionID, session.Cart, totals, method, uc.now())
	logger := uc.logger.With(zap.String("sessionId", sessionID), zap.String("paymentMethod", method))
	logger.Info("checkout submitting",
		zap.Int("itemCount", len(snapshot.Items)),
		zap.String("total", totals.Total.String()),
	)

	// The submission outlives the caller: a payment that may have gone
	// through must still be recorded against the cart.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()

	result, err := uc.backend.PostCheckout(sendCtx, dto.NewCheckoutRequest(snapshot))
	if err != nil {
		logger.Warn("checkout failed", zap.Error(err))
		uc.finish(CheckoutStatus{
			SessionID:     sessionID,
			State:         domain.CheckoutFailed,
			PaymentMethod: method,
			Totals:        &totals,
			Error:         err.Error(),
			SubmittedAt:   snapshot.TakenAt,
		})
		uc.recorder.RecordCheckout(OutcomeFailed)
		return nil, err
	}

	orderID := string(result.OrderID)
	settleCtx, cancelSettle := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancelSettle()
	if _, err := uc.carts.Settle(settleCtx, sessionID, snapshot.Items); err != nil {
		logger.Error("order placed but cart could not be cleared", zap.String("orderId", orderID), zap.Error(err))
	}

	status := uc.finish(CheckoutStatus{
		SessionID:     sessionID,
		State:         domain.CheckoutSucceeded,
		OrderID:       orderID,
		PaymentMethod: method,
		Totals:        &totals,
		SubmittedAt:   snapshot.TakenAt,
	})
	uc.recorder.RecordCheckout(OutcomeSucceeded)
	logger.Info("checkout succeeded", zap.String("orderId", orderID))

	return &status, nil
}

// Status reports the last checkout attempt for the session, IDLE if none.
func (uc *CheckoutUseCase) Status(sessionID string) CheckoutStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if status, ok := uc.statuses[sessionID]; ok {
		return status
	}
	return CheckoutStatus{SessionID: sessionID, State: domain.CheckoutIdle}
}

func (uc *CheckoutUseCase) begin(sessionID string) (*CheckoutStatus, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current, ok := uc.statuses[sessionID]
	if ok && current.State == domain.CheckoutSubmitting {
		return nil, apperrors.NewConflictError("a checkout is already in progress for this session")
	}

	uc.statuses[sessionID] = CheckoutStatus{
		SessionID: sessionID,
		State:     domain.CheckoutSubmitting,
		UpdatedAt: uc.now(),
	}

	if !ok {
		return nil, nil
	}
	return &current, nil
}

func (uc *CheckoutUseCase) restore(sessionID string, previous *CheckoutStatus) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if previous == nil {
		delete(uc.statuses, sessionID)
		return
	}
	uc.statuses[sessionID] = *previous
}

func (uc *CheckoutUseCase) finish(status CheckoutStatus) CheckoutStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	status.UpdatedAt = uc.now()
	uc.statuses[status.SessionID] = status
	return status
}

func (uc *CheckoutUseCase) matchPaymentMethod(method string) (string, bool) {
	method = strings.TrimSpace(method)
	for _, allowed := range uc.paymentMethods {
		if strings.EqualFold(allowed, method) {
			return allowed, true
		}
	}
	return "", false
}
