package models

import (
	"github.com/shopspring/decimal"
)

// DetailDisplayID is the details key holding the stable human-facing short
// code shown next to the product on its page.
const DetailDisplayID = "displayId"

// Product is a single catalog record as stored in the product database.
// The generator only reads it; the only fields it ever writes back are the
// displayId detail assigned on first render and the page filename derived
// once from the title.
type Product struct {
	ID       string
	Title    string
	Desc     string
	Price    decimal.Decimal // base price before any discount
	Category string
	Images   []string // first entry is the main image
	Details  map[string]string
	Sale     *SaleState
	Page     string // generated document filename
}

// DisplayID returns the persisted short code, or "" when none was assigned yet.
func (p *Product) DisplayID() string {
	if p.Details == nil {
		return ""
	}
	return p.Details[DetailDisplayID]
}

// MainImage returns the canonical image URL, or "" for an imageless product.
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
