// Package pricing computes the displayed price for a product. The renderer
// and the patch engine both go through Quote so a full regenerate and a
// targeted patch can never disagree about what a page shows.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Houeta/page-press/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the resolved display state for one product.
type Quote struct {
	UnitPrice     decimal.Decimal // the price the customer pays per unit
	OriginalPrice decimal.Decimal // the price to show struck through
	Discounted    bool
	PercentOff    int64 // valid only when HasPercent
	HasPercent    bool  // false when the original price is not positive
}

// Resolve computes the quote for a base price and an optional sale.
// It is a pure function of its inputs.
func Resolve(base decimal.Decimal, sale *models.SaleState) Quote {
	quote := Quote{UnitPrice: base, OriginalPrice: base}

	if !sale.Effective() {
		return quote
	}

	quote.Discounted = true
	quote.UnitPrice = sale.Price
	if sale.PrevPrice != nil && sale.PrevPrice.IsPositive() {
		quote.OriginalPrice = *sale.PrevPrice
	}

	if quote.OriginalPrice.IsPositive() {
		quote.HasPercent = true
		quote.PercentOff = quote.OriginalPrice.
			Sub(quote.UnitPrice).
			Mul(oneHundred).
			Div(quote.OriginalPrice).
			Round(0).
			IntPart()
	}

	return quote
}

// USD formats a decimal as a dollar amount with two fixed fraction digits.
func USD(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
