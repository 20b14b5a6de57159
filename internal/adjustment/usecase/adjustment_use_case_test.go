package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"posterminal/internal/domain"
	"posterminal/internal/dto"
	apperrors "posterminal/internal/errors"
	invservice "posterminal/internal/inventory/service"
)

type mockBackend struct {
	ListStockBalancesFunc func(ctx context.Context) ([]domain.StockBalance, error)
	PostAdjustmentFunc    func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error)
	PostTransferFunc      func(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error)
}

func (m *mockBackend) ListStockBalances(ctx context.Context) ([]domain.StockBalance, error) {
	return m.ListStockBalancesFunc(ctx)
}

func (m *mockBackend) PostAdjustment(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
	return m.PostAdjustmentFunc(ctx, req)
}

func (m *mockBackend) PostTransfer(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error) {
	return m.PostTransferFunc(ctx, req)
}

type mockRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockRefresher) Refresh(ctx context.Context) (*invservice.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &invservice.Snapshot{}, nil
}

func (m *mockRefresher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recorded struct {
	kind    string
	success bool
}

type mockRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (m *mockRecorder) RecordAdjustment(kind string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, recorded{kind: kind, success: success})
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	fields := make([]string, 0, len(ve.Details))
	for _, d := range ve.Details {
		fields = append(fields, d.Field)
	}
	return fields
}

func TestAdjust_AddPostsPositiveDelta(t *testing.T) {
	var posted domain.AdjustmentRequest
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			posted = req
			return &dto.AdjustmentResult{
				UpdatedBalance: &domain.StockBalance{ProductID: "p1", LocationID: "LOC-1", OnHandQty: 15},
			}, nil
		},
	}
	refresher := &mockRefresher{}
	recorder := &mockRecorder{}
	uc := NewAdjustmentUseCase(backend, refresher, recorder, zap.NewNop(), "LOC-1")

	out, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "add", Quantity: 5, Reason: "Restock",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), posted.Delta())
	assert.Equal(t, "LOC-1", posted.LocationID())
	assert.Equal(t, int64(5), out.QtyChange)
	assert.Equal(t, "LOC-1", out.LocationID)
	require.NotNil(t, out.UpdatedBalance)
	assert.Equal(t, domain.Qty(15), out.UpdatedBalance.OnHandQty)
	assert.Equal(t, 1, refresher.Calls())
	assert.Equal(t, []recorded{{kind: KindAdjustment, success: true}}, recorder.seen)
}

func TestAdjust_RemovePostsNegativeDelta(t *testing.T) {
	var posted domain.AdjustmentRequest
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			posted = req
			return &dto.AdjustmentResult{}, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", LocationID: "LOC-2", Type: "Remove", Quantity: 3, Reason: "Damaged",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(-3), posted.Delta())
	assert.Equal(t, "LOC-2", posted.LocationID())
}

func TestAdjust_InvalidFormNeverReachesBackend(t *testing.T) {
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{Type: "shrink", Quantity: 0})

	assert.ElementsMatch(t, []string{"productId", "quantity", "reason", "type"}, validationFields(t, err))
}

func TestAdjust_SetComputesDifferenceFromBalance(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		onHand    domain.Qty
		wantDelta int64
	}{
		{name: "raise", target: 12, onHand: 10, wantDelta: 2},
		{name: "lower", target: 4, onHand: 10, wantDelta: -6},
		{name: "to zero", target: 0, onHand: 7, wantDelta: -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posted domain.AdjustmentRequest
			backend := &mockBackend{
				ListStockBalancesFunc: func(ctx context.Context) ([]domain.StockBalance, error) {
					return []domain.StockBalance{
						{ProductID: "p1", LocationID: "LOC-2", OnHandQty: 99},
						{ProductID: "p1", LocationID: "LOC-1", OnHandQty: tt.onHand},
					}, nil
				},
				PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
					posted = req
					return &dto.AdjustmentResult{}, nil
				},
			}
			uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

			_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
				ProductID: "p1", Type: "set", Quantity: tt.target, Reason: "Count",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, posted.Delta())
		})
	}
}

func TestAdjust_SetMissingBalanceCountsAsZero(t *testing.T) {
	var posted domain.AdjustmentRequest
	backend := &mockBackend{
		ListStockBalancesFunc: func(ctx context.Context) ([]domain.StockBalance, error) {
			return []domain.StockBalance{}, nil
		},
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			posted = req
			return &dto.AdjustmentResult{}, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "set", Quantity: 8, Reason: "Count",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8), posted.Delta())
}

func TestAdjust_SetToCurrentLevelIsRejected(t *testing.T) {
	backend := &mockBackend{
		ListStockBalancesFunc: func(ctx context.Context) ([]domain.StockBalance, error) {
			return []domain.StockBalance{{ProductID: "p1", LocationID: "LOC-1", OnHandQty: 6}}, nil
		},
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "set", Quantity: 6, Reason: "Count",
	})

	assert.Equal(t, []string{"quantity"}, validationFields(t, err))
}

func TestAdjust_SetBalanceFetchFailure(t *testing.T) {
	fetchErr := apperrors.NewTransportError("list_stock_balances", errors.New("connection refused"))
	backend := &mockBackend{
		ListStockBalancesFunc: func(ctx context.Context) ([]domain.StockBalance, error) {
			return nil, fetchErr
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "set", Quantity: 3, Reason: "Count",
	})

	_, ok := apperrors.IsTransportError(err)
	assert.True(t, ok)
}

func TestAdjust_BackendRejection(t *testing.T) {
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			return nil, apperrors.NewServerError("post_adjustment", 0, "insufficient stock")
		},
	}
	refresher := &mockRefresher{}
	recorder := &mockRecorder{}
	uc := NewAdjustmentUseCase(backend, refresher, recorder, zap.NewNop(), "LOC-1")

	_, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "remove", Quantity: 50, Reason: "Sold",
	})

	se, ok := apperrors.IsServerError(err)
	require.True(t, ok)
	assert.Equal(t, "insufficient stock", se.Message)
	assert.Equal(t, 0, refresher.Calls())
	assert.Equal(t, []recorded{{kind: KindAdjustment, success: false}}, recorder.seen)
}

func TestAdjust_RefreshFailureDoesNotFailAdjustment(t *testing.T) {
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			return &dto.AdjustmentResult{}, nil
		},
	}
	refresher := &mockRefresher{err: errors.New("backend down")}
	uc := NewAdjustmentUseCase(backend, refresher, nil, zap.NewNop(), "LOC-1")

	out, err := uc.Adjust(context.Background(), "s1", AdjustmentForm{
		ProductID: "p1", Type: "add", Quantity: 1, Reason: "Found",
	})

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, 1, refresher.Calls())
}

func TestAdjust_SingleFlightPerSession(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	backend := &mockBackend{
		PostAdjustmentFunc: func(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
			once.Do(func() {
				close(started)
				<-unblock
			})
			return &dto.AdjustmentResult{}, nil
		},
		PostTransferFunc: func(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error) {
			return &dto.TransferResult{}, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")
	form := AdjustmentForm{ProductID: "p1", Type: "add", Quantity: 1, Reason: "Restock"}

	done := make(chan error, 1)
	go func() {
		_, err := uc.Adjust(context.Background(), "s1", form)
		done <- err
	}()
	<-started

	_, err := uc.Adjust(context.Background(), "s1", form)
	_, isConflict := apperrors.IsConflictError(err)
	assert.True(t, isConflict)

	_, err = uc.Transfer(context.Background(), "s1", TransferForm{
		ProductID: "p1", FromLocationID: "A", ToLocationID: "B", Quantity: 1, Reason: "Move",
	})
	_, isConflict = apperrors.IsConflictError(err)
	assert.True(t, isConflict)

	_, err = uc.Transfer(context.Background(), "s2", TransferForm{
		ProductID: "p1", FromLocationID: "A", ToLocationID: "B", Quantity: 1, Reason: "Move",
	})
	assert.NoError(t, err)

	close(unblock)
	require.NoError(t, <-done)

	_, err = uc.Adjust(context.Background(), "s1", form)
	assert.NoError(t, err)
}

func TestTransfer_Success(t *testing.T) {
	var posted domain.TransferRequest
	backend := &mockBackend{
		PostTransferFunc: func(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error) {
			posted = req
			return &dto.TransferResult{
				Movement: &domain.StockMove{ID: "m1", ProductID: "p1", Qty: 4},
				Balances: []domain.StockBalance{
					{ProductID: "p1", LocationID: "A", OnHandQty: 6},
					{ProductID: "p1", LocationID: "B", OnHandQty: 4},
				},
			}, nil
		},
	}
	refresher := &mockRefresher{}
	recorder := &mockRecorder{}
	uc := NewAdjustmentUseCase(backend, refresher, recorder, zap.NewNop(), "LOC-1")

	out, err := uc.Transfer(context.Background(), "s1", TransferForm{
		ProductID: " p1 ", FromLocationID: "A", ToLocationID: "B", Quantity: 4, Reason: "Rebalance",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", posted.ProductID())
	assert.Equal(t, int64(4), posted.Quantity())
	assert.Equal(t, "m1", out.Movement.ID)
	assert.Len(t, out.Balances, 2)
	assert.Equal(t, 1, refresher.Calls())
	assert.Equal(t, []recorded{{kind: KindTransfer, success: true}}, recorder.seen)
}

func TestTransfer_SameLocationRejected(t *testing.T) {
	backend := &mockBackend{
		PostTransferFunc: func(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}
	uc := NewAdjustmentUseCase(backend, &mockRefresher{}, nil, zap.NewNop(), "LOC-1")

	_, err := uc.Transfer(context.Background(), "s1", TransferForm{
		ProductID: "p1", FromLocationID: "A", ToLocationID: "A", Quantity: 1, Reason: "Move",
	})

	assert.Equal(t, []string{"toLocationId"}, validationFields(t, err))
}
