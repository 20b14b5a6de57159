package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"posterminal/internal/domain"
	apperrors "posterminal/internal/errors"
	invservice "posterminal/internal/inventory/service"
)

type Repository interface {
	Load(ctx context.Context, id string) (*domain.CartSession, error)
	Save(ctx context.Context, session *domain.CartSession) error
	Delete(ctx context.Context, id string) error
}

type Catalog interface {
	Current() *invservice.Snapshot
	Refresh(ctx context.Context) (*invservice.Snapshot, error)
}

type Options struct {
	Tax             domain.TaxFunc
	BlockOutOfStock bool
}

type CartView struct {
	SessionID string            `json:"sessionId"`
	Items     []domain.CartItem `json:"items"`
	Totals    domain.Totals     `json:"totals"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CartService owns every change to a cart session. Each mutation is saved
// before it returns; if the save fails the stored session is unchanged.
type CartService struct {
	repo            Repository
	catalog         Catalog
	tax             domain.TaxFunc
	blockOutOfStock bool
	logger          *zap.Logger
	locks           *sessionLocks
	now             func() time.Time
}

func NewCartService(repo Repository, catalog Catalog, opts Options, logger *zap.Logger) *CartService {
	tax := opts.Tax
	if tax == nil {
		tax = domain.ZeroTax
	}
	return &CartService{
		repo:            repo,
		catalog:         catalog,
		tax:             tax,
		blockOutOfStock: opts.BlockOutOfStock,
		logger:          logger,
		locks:           newSessionLocks(),
		now:             time.Now,
	}
}

func (s *CartService) Tax() domain.TaxFunc {
	return s.tax
}

func (s *CartService) Create(ctx context.Context) (*CartView, error) {
	session := domain.NewCartSession(uuid.NewString(), s.now().UTC())
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("creating cart session: %w", err)
	}
	s.logger.Info("cart session created", zap.String("sessionId", session.ID))
	return s.view(session), nil
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.CartSession, error) {
	return s.repo.Load(ctx, sessionID)
}

func (s *CartService) View(ctx context.Context, sessionID string) (*CartView, error) {
	session, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// AddItem looks the product up in the current catalog, refreshing once if
// it is not there, and adds one unit of it to the cart.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID, variantID string) (*CartView, error) {
	product, variant, err := s.lookup(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.Cart.AddItem(product, variant)
		return nil
	})
}

func (s *CartService) ChangeQuantity(ctx context.Context, sessionID, productID string, delta int64) (*CartView, error) {
	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.Cart.ChangeQuantity(productID, delta)
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.Cart.RemoveItem(productID)
		return nil
	})
}

// SetDiscount stores the percentage clamped to [0, 100].
func (s *CartService) SetDiscount(ctx context.Context, sessionID string, percentage decimal.Decimal) (*CartView, error) {
	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.DiscountPercentage = domain.ClampPercentage(percentage)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.Cart.Clear()
		return nil
	})
}

// Settle takes an order's items out of the cart and clears the discount.
// Anything added while the order was in flight stays.
func (s *CartService) Settle(ctx context.Context, sessionID string, ordered []domain.CartItem) (*CartView, error) {
	return s.Mutate(ctx, sessionID, func(session *domain.CartSession) error {
		session.Settle(ordered)
		return nil
	})
}

// Mutate applies fn to a copy of the stored session and saves it. Calls
// for the same session are serialized.
func (s *CartService) Mutate(ctx context.Context, sessionID string, fn func(*domain.CartSession) error) (*CartView, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	stored, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session := stored.Clone()
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Error("saving cart session failed", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("saving cart session: %w", err)
	}

	return s.view(session), nil
}

func (s *CartService) lookup(ctx context.Context, productID, variantID string) (domain.Product, *domain.ProductVariant, error) {
	snapshot := s.catalog.Current()
	product, ok := snapshot.Product(productID)
	if !ok {
		refreshed, err := s.catalog.Refresh(ctx)
		if err != nil {
			return domain.Product{}, nil, fmt.Errorf("refreshing catalog: %w", err)
		}
		snapshot = refreshed
		product, ok = snapshot.Product(productID)
		if !ok {
			return domain.Product{}, nil, apperrors.NewNotFoundError(fmt.Sprintf("product %s not found", productID))
		}
	}

	var variant *domain.ProductVariant
	if variantID != "" {
		v, ok := product.Variant(variantID)
		if !ok {
			return domain.Product{}, nil, apperrors.NewNotFoundError(fmt.Sprintf("variant %s not found for product %s", variantID, productID))
		}
		variant = &v
	}

	// Without balances every product would look out of stock.
	if s.blockOutOfStock && !snapshot.FetchFailed(invservice.ListStockBalances) && product.TotalStock() <= 0 {
		return domain.Product{}, nil, apperrors.NewConflictError(fmt.Sprintf("product %s is out of stock", productID))
	}

	return product, variant, nil
}

func (s *CartService) view(session *domain.CartSession) *CartView {
	return &CartView{
		SessionID: session.ID,
		Items:     session.Cart.Items(),
		Totals:    session.Totals(s.tax),
		UpdatedAt: session.UpdatedAt,
	}
}
