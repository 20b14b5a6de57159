package dto

import (
	"github.com/shopspring/decimal"

	"posterminal/internal/domain"
)

type ProductQuery struct {
	Page  int
	Limit int
	Name  string
}

// ProductPayload is a product as the backend sends it. The backend spells
// the tax rate tax_rate; older builds used taxRate, which the embedded
// domain field picks up.
type ProductPayload struct {
	domain.Product
	TaxRateSnake *decimal.Decimal `json:"tax_rate,omitempty"`
}

func (p ProductPayload) ToDomain() domain.Product {
	product := p.Product
	if p.TaxRateSnake != nil {
		rate := *p.TaxRateSnake
		product.TaxRate = &rate
	}
	return product
}
