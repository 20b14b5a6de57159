package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"posterminal/internal/domain"
	"posterminal/internal/inventory/service"
)

const (
	unknownProductName = "Unknown Product"
	allCategories      = "all"
)

type Refresher interface {
	Current() *service.Snapshot
	Refresh(ctx context.Context) (*service.Snapshot, error)
}

type OverviewQuery struct {
	Search  string
	Refresh bool
}

type InventoryRow struct {
	Product     domain.Product     `json:"product"`
	TotalStock  int64              `json:"totalStock"`
	Status      domain.StockStatus `json:"status"`
	StatusLabel string             `json:"statusLabel"`
}

type Summary struct {
	TotalItems      int64        `json:"totalItems"`
	TotalValue      domain.Money `json:"totalValue"`
	LowStockCount   int          `json:"lowStockCount"`
	OutOfStockCount int          `json:"outOfStockCount"`
}

type MovementView struct {
	domain.StockMove
	DisplayRefType string `json:"displayRefType"`
}

type Overview struct {
	Rows        []InventoryRow `json:"rows"`
	Summary     Summary        `json:"summary"`
	Movements   []MovementView `json:"movements"`
	Partial     bool           `json:"partial"`
	Failed      []string       `json:"failed,omitempty"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}

type CatalogEntry struct {
	domain.Product
	TotalStock int64              `json:"totalStock"`
	Status     domain.StockStatus `json:"stockStatus"`
}

type InventoryUseCase struct {
	refresher  Refresher
	thresholds domain.StockThresholds
	logger     *zap.Logger
}

func NewInventoryUseCase(refresher Refresher, thresholds domain.StockThresholds, logger *zap.Logger) *InventoryUseCase {
	return &InventoryUseCase{
		refresher:  refresher,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Overview builds the inventory dashboard. The summary always covers the
// whole catalog; Search only narrows the rows.
func (uc *InventoryUseCase) Overview(ctx context.Context, query OverviewQuery) (*Overview, error) {
	snapshot, err := uc.snapshot(ctx, query.Refresh)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	rows := make([]InventoryRow, 0, len(snapshot.Products))
	summary := Summary{TotalValue: domain.ZeroMoney()}

	for _, p := range snapshot.Products {
		total := p.TotalStock()
		status := uc.thresholds.Classify(total)

		summary.TotalItems += total
		summary.TotalValue = summary.TotalValue.Add(p.Price.MulQty(total))
		switch status {
		case domain.StockStatusLowStock:
			summary.LowStockCount++
		case domain.StockStatusOutOfStock:
			summary.OutOfStockCount++
		}

		if !matchesSearch(p, search) {
			continue
		}
		rows = append(rows, InventoryRow{
			Product:     p,
			TotalStock:  total,
			Status:      status,
			StatusLabel: status.Label(),
		})
	}

	if snapshot.Partial() {
		uc.logger.Warn("Serving partial inventory overview",
			zap.Strings("failed", snapshot.Failed),
			zap.Uint64("sequence", snapshot.Sequence))
	}

	return &Overview{
		Rows:        rows,
		Summary:     summary,
		Movements:   RenderMovements(snapshot.Movements, snapshot.Products),
		Partial:     snapshot.Partial(),
		Failed:      snapshot.Failed,
		RefreshedAt: snapshot.RefreshedAt,
	}, nil
}

// Catalog lists products for the POS grid, filtered by category name.
// An empty category or "all" returns everything.
func (uc *InventoryUseCase) Catalog(ctx context.Context, category string) ([]CatalogEntry, error) {
	snapshot, err := uc.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	entries := make([]CatalogEntry, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		if category != "" && !strings.EqualFold(category, allCategories) && !strings.EqualFold(p.CategoryName(), category) {
			continue
		}
		total := p.TotalStock()
		entries = append(entries, CatalogEntry{
			Product:    p,
			TotalStock: total,
			Status:     uc.thresholds.Classify(total),
		})
	}
	return entries, nil
}

// snapshot returns the current data, refreshing first when asked to or
// when nothing has been loaded yet.
func (uc *InventoryUseCase) snapshot(ctx context.Context, refresh bool) (*service.Snapshot, error) {
	current := uc.refresher.Current()
	if !refresh && current.Sequence > 0 {
		return current, nil
	}
	return uc.refresher.Refresh(ctx)
}

func matchesSearch(p domain.Product, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.SKU), search)
}

// RenderMovements resolves display names for stock movements. The
// backend's product name wins; otherwise the catalog name, otherwise
// "Unknown Product". A non-empty reason replaces the ref type for display.
func RenderMovements(moves []domain.StockMove, products []domain.Product) []MovementView {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	views := make([]MovementView, len(moves))
	for i, move := range moves {
		if move.ProductName == "" || move.ProductName == unknownProductName {
			move.ProductName = unknownProductName
			if name := names[move.ProductID]; move.ProductID != "" && name != "" {
				move.ProductName = name
			}
		}

		refType := move.RefType
		if move.Reason != "" {
			refType = strings.ReplaceAll(move.Reason, "_", " ")
		}

		views[i] = MovementView{StockMove: move, DisplayRefType: refType}
	}
	return views
}
