package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"posterminal/internal/domain"
	"posterminal/internal/dto"
)

const (
	RefreshComplete = "complete"
	RefreshPartial  = "partial"
	RefreshStale    = "stale"
	RefreshAborted  = "aborted"
)

// Names of the lists a refresh fetches, as reported in Snapshot.Failed.
const (
	ListProducts       = "products"
	ListStockBalances  = "stock_balances"
	ListStockMovements = "stock_movements"
)

type Backend interface {
	ListProducts(ctx context.Context, query dto.ProductQuery) ([]domain.Product, error)
	ListStockBalances(ctx context.Context) ([]domain.StockBalance, error)
	ListStockMovements(ctx context.Context) ([]domain.StockMove, error)
}

type Recorder interface {
	RecordRefresh(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRefresh(string) {}

// Snapshot is one consistent read of the backend. Products already carry
// their merged stock balances.
type Snapshot struct {
	Sequence    uint64
	Products    []domain.Product
	Balances    []domain.StockBalance
	Movements   []domain.StockMove
	Failed      []string
	RefreshedAt time.Time
}

func (s *Snapshot) Partial() bool {
	return len(s.Failed) > 0
}

func (s *Snapshot) FetchFailed(list string) bool {
	for _, name := range s.Failed {
		if name == list {
			return true
		}
	}
	return false
}

func (s *Snapshot) Product(id string) (domain.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Products:  []domain.Product{},
		Balances:  []domain.StockBalance{},
		Movements: []domain.StockMove{},
	}
}

type RefreshService struct {
	backend      Backend
	recorder     Recorder
	logger       *zap.Logger
	productQuery dto.ProductQuery
	now          func() time.Time

	sequence atomic.Uint64

	mu      sync.RWMutex
	current *Snapshot
}

func NewRefreshService(backend Backend, recorder Recorder, logger *zap.Logger, productQuery dto.ProductQuery) *RefreshService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RefreshService{
		backend:      backend,
		recorder:     recorder,
		logger:       logger,
		productQuery: productQuery,
		now:          time.Now,
		current:      emptySnapshot(),
	}
}

func (s *RefreshService) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh fetches products, balances and movements concurrently. A failed
// or mis-shaped list degrades to empty without affecting the others. The
// result is stored only if no later refresh has been stored already; the
// returned snapshot is whatever is current afterwards.
func (s *RefreshService) Refresh(ctx context.Context) (*Snapshot, error) {
	seq := s.sequence.Add(1)

	var products []domain.Product
	var balances []domain.StockBalance
	var movements []domain.StockMove
	var productsErr, balancesErr, movementsErr error

	// Each fetch keeps its own error so one failure never cancels the rest.
	var g errgroup.Group
	g.Go(func() error {
		products, productsErr = s.backend.ListProducts(ctx, s.productQuery)
		return nil
	})
	g.Go(func() error {
		balances, balancesErr = s.backend.ListStockBalances(ctx)
		return nil
	})
	g.Go(func() error {
		movements, movementsErr = s.backend.ListStockMovements(ctx)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.recorder.RecordRefresh(RefreshAborted)
		return nil, err
	}

	snapshot := &Snapshot{Sequence: seq, RefreshedAt: s.now()}
	products = settle(s, snapshot, ListProducts, products, productsErr)
	snapshot.Balances = settle(s, snapshot, ListStockBalances, balances, balancesErr)
	snapshot.Movements = settle(s, snapshot, ListStockMovements, movements, movementsErr)
	snapshot.Products = domain.MergeStock(products, snapshot.Balances)

	if !s.store(snapshot) {
		s.logger.Debug("discarding stale refresh result", zap.Uint64("sequence", seq))
		s.recorder.RecordRefresh(RefreshStale)
		return s.Current(), nil
	}

	if snapshot.Partial() {
		s.logger.Warn("some inventory data could not be fetched", zap.Strings("failed", snapshot.Failed))
		s.recorder.RecordRefresh(RefreshPartial)
	} else {
		s.recorder.RecordRefresh(RefreshComplete)
	}

	return snapshot, nil
}

func settle[T any](s *RefreshService, snapshot *Snapshot, name string, list []T, err error) []T {
	if err != nil {
		s.logger.Warn("inventory list fetch failed", zap.String("list", name), zap.Error(err))
		snapshot.Failed = append(snapshot.Failed, name)
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

func (s *RefreshService) store(snapshot *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.Sequence < s.current.Sequence {
		return false
	}
	s.current = snapshot
	return true
}

// Run refreshes on every tick until ctx is done. A non-positive interval
// disables background refreshing.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("background inventory refresh failed", zap.Error(err))
			}
		}
	}
}
