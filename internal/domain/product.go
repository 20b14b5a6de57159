package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
	ProductStatusPending      ProductStatus = "PENDING"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductVariant struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Price         Money            `json:"price"`
	StockQuantity Qty              `json:"stockQuantity"`
	ImageURLs     []string         `json:"imageUrls,omitempty"`
	TaxRate       *decimal.Decimal `json:"taxRate,omitempty"`
}

// Product is a catalog entry. Everything except StockBalances is owned by
// the backend; StockBalances is replaced wholesale by MergeStock.
type Product struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Barcode       string           `json:"barcode,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         Money            `json:"price"`
	TaxRate       *decimal.Decimal `json:"taxRate,omitempty"`
	Category      *Category        `json:"category,omitempty"`
	UOM           string           `json:"uom,omitempty"`
	ImageURLs     []string         `json:"imageUrls,omitempty"`
	IsInStock     bool             `json:"isInStock"`
	Status        ProductStatus    `json:"status,omitempty"`
	Variants      []ProductVariant `json:"variants,omitempty"`
	StockBalances []StockBalance   `json:"stockBalances,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (p Product) Variant(id string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
