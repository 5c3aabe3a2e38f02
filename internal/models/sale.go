package models

import (
	"github.com/shopspring/decimal"
)

// SaleState is the discount descriptor attached to a product.
type SaleState struct {
	Active    bool             `json:"active"`
	Price     decimal.Decimal  `json:"price"`               // discounted unit price
	PrevPrice *decimal.Decimal `json:"prevPrice,omitempty"` // struck-through price; base price when nil
}

// Effective reports whether the sale actually applies: it must exist, be
// flagged active and carry a positive price. An active sale with a zero or
// negative price is treated as no sale everywhere.
func (s *SaleState) Effective() bool {
	return s != nil && s.Active && s.Price.IsPositive()
}
