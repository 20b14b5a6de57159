package domain

import "time"

// StockBalance is the backend's view of one product at one location.
// AvailableQty is taken as reported and never recomputed here.
type StockBalance struct {
	ProductID    string    `json:"productId"`
	LocationID   string    `json:"locationId"`
	OnHandQty    Qty       `json:"onHandQty"`
	CommittedQty Qty       `json:"committedQty"`
	AvailableQty Qty       `json:"availableQty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type StockMove struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"productId"`
	ProductName      string    `json:"productName"`
	FromLocationID   *string   `json:"fromLocationId"`
	ToLocationID     *string   `json:"toLocationId"`
	FromLocationName string    `json:"fromLocationName,omitempty"`
	ToLocationName   string    `json:"toLocationName,omitempty"`
	Qty              Qty       `json:"qty"`
	UnitCost         Money     `json:"unitCost"`
	Reason           string    `json:"reason"`
	RefType          string    `json:"refType"`
	RefID            string    `json:"refId"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MergeStock returns copies of products whose StockBalances hold exactly the
// balances for that product, in the order received. A product without
// balances gets an empty, non-nil list. Neither input is modified.
func MergeStock(products []Product, balances []StockBalance) []Product {
	byProduct := make(map[string][]StockBalance, len(products))
	for _, b := range balances {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	merged := make([]Product, len(products))
	for i, p := range products {
		matched := byProduct[p.ID]
		p.StockBalances = make([]StockBalance, len(matched))
		copy(p.StockBalances, matched)
		merged[i] = p
	}
	return merged
}

// TotalStock sums on-hand quantity across every location.
func (p Product) TotalStock() int64 {
	var total int64
	for _, b := range p.StockBalances {
		total += int64(b.OnHandQty)
	}
	return total
}

type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

func (s StockStatus) Label() string {
	switch s {
	case StockStatusInStock:
		return "In Stock"
	case StockStatusLowStock:
		return "Low Stock"
	default:
		return "Out of Stock"
	}
}

const DefaultInStockAbove int64 = 100

// StockThresholds is the single stock classification used by every view.
type StockThresholds struct {
	InStockAbove int64
}

func DefaultStockThresholds() StockThresholds {
	return StockThresholds{InStockAbove: DefaultInStockAbove}
}

func (t StockThresholds) Classify(totalStock int64) StockStatus {
	switch {
	case totalStock > t.InStockAbove:
		return StockStatusInStock
	case totalStock > 0:
		return StockStatusLowStock
	default:
		return StockStatusOutOfStock
	}
}
