// Package document pins down the layout contract of a generated page: the
// marker element and its attribute names, the identifiable price and ribbon
// regions, the document boundaries and the filename rule. The storefront's
// client-side cart code reads these exact signatures, so both the renderer
// and the patch engine build fragments only through this package.
package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Houeta/page-press/internal/markup"
	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
)

const (
	// Ext is the extension of every generated document.
	Ext = ".html"

	// DocStart / DocEnd bound one whole document; a second DocStart after
	// the first means a duplicated fragment the sanitizer must strip.
	DocStart = "<!DOCTYPE html>"
	DocEnd   = "</html>"

	// MarkerClass identifies the single metadata element per document.
	MarkerClass     = "snipcart-add-item"
	MarkerSignature = `class="` + MarkerClass + `"`

	// FallbackSignature is the wrapper a fresh marker is inserted after
	// when a document lost its marker element.
	FallbackSignature = `<div class="buy-box"`

	PriceSpanID  = "product-price"
	TotalSpanID  = "total-price"
	SaleRibbonID = "sale-ribbon"
)

// Marker attribute names.
const (
	AttrClass       = "class"
	AttrID          = "data-item-id"
	AttrCode        = "data-item-code"
	AttrName        = "data-item-name"
	AttrDescription = "data-item-description"
	AttrPrice       = "data-item-price"
	AttrImage       = "data-item-image"
	AttrURL         = "data-item-url"
	AttrSale        = "data-item-sale"
)

// EncodeSale encodes a sale descriptor for the marker attribute. A sale that
// is not effectively active encodes as "null" so client code sees a definite
// no-sale value instead of a stale descriptor.
func EncodeSale(sale *models.SaleState) string {
	if !sale.Effective() {
		return "null"
	}
	raw, err := json.Marshal(sale)
	if err != nil {
		// SaleState marshals from plain values; this cannot fail.
		return "null"
	}
	return string(raw)
}

// DecodeSale parses a marker sale attribute back into a descriptor.
// "null" and "" decode to nil.
func DecodeSale(encoded string) (*models.SaleState, error) {
	if encoded == "" || encoded == "null" {
		return nil, nil
	}
	var sale models.SaleState
	if err := json.Unmarshal([]byte(encoded), &sale); err != nil {
		return nil, fmt.Errorf("document: decode sale attribute: %w", err)
	}
	return &sale, nil
}

// MarkerAttrs builds the attribute set the marker element must assert for a
// product. The attribute order here is canonical: rebuilding a marker from an
// unchanged product yields identical bytes.
func MarkerAttrs(product *models.Product, sale *models.SaleState, quote pricing.Quote) markup.Attrs {
	return markup.Attrs{
		{Name: AttrClass, Value: MarkerClass},
		{Name: AttrID, Value: product.ID},
		{Name: AttrCode, Value: product.DisplayID()},
		{Name: AttrName, Value: product.Title},
		{Name: AttrDescription, Value: product.Desc},
		{Name: AttrPrice, Value: quote.UnitPrice.StringFixed(2)},
		{Name: AttrImage, Value: product.MainImage()},
		{Name: AttrURL, Value: product.Page},
		{Name: AttrSale, Value: EncodeSale(sale)},
	}
}

// MarkerHTML renders a complete marker element.
func MarkerHTML(attrs markup.Attrs) string {
	return markup.BuildTag("span", attrs) + "</span>"
}

// PriceHTML renders the unit-price region for a quote.
func PriceHTML(quote pricing.Quote) string {
	return priceSpan(PriceSpanID, quote)
}

// TotalHTML renders the total-price region for a quote.
func TotalHTML(quote pricing.Quote) string {
	return priceSpan(TotalSpanID, quote)
}

func priceSpan(id string, quote pricing.Quote) string {
	if quote.Discounted {
		return fmt.Sprintf(`<span id=%q><s>%s</s> %s</span>`,
			id, pricing.USD(quote.OriginalPrice), pricing.USD(quote.UnitPrice))
	}
	return fmt.Sprintf(`<span id=%q>%s</span>`, id, pricing.USD(quote.UnitPrice))
}

// RibbonHTML renders the discount ribbon. Without a discount the region is
// kept as an explicitly hidden element, never removed, so a later patch can
// always find it again.
func RibbonHTML(quote pricing.Quote) string {
	if !quote.Discounted {
		return fmt.Sprintf(`<div id=%q hidden></div>`, SaleRibbonID)
	}

	label := "sale"
	if quote.HasPercent {
		label = fmt.Sprintf("-%d%%", quote.PercentOff)
	}

	return fmt.Sprintf(
		`<div id=%q><span class="sale-percent">%s</span><span class="sale-price">%s</span></div>`,
		SaleRibbonID, label, pricing.USD(quote.UnitPrice))
}

// Validate runs the structural sanity check a candidate document must pass
// before it may be committed: the marker element and the unit-price region
// must both be present.
func Validate(text string) error {
	if !strings.Contains(text, MarkerSignature) {
		return fmt.Errorf("document: %w", ErrMarkerMissing)
	}
	if !strings.Contains(text, regionNeedle(PriceSpanID)) {
		return fmt.Errorf("document: %w", ErrPriceRegionMissing)
	}
	return nil
}

func regionNeedle(id string) string {
	return fmt.Sprintf("id=%q", id)
}

// Sanitize strips duplicated whole-document fragments.
func Sanitize(text string) (string, int) {
	return markup.StripDuplicateFragments(text, DocStart, DocEnd)
}

// Slug derives the stable, URL-visible filename for a title: spaces become
// underscores, everything outside [a-z0-9_-] is dropped, and Ext is appended.
// The fallback parameter (normally the product id) covers titles with no
// usable characters at all.
func Slug(title, fallback string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if slug == "" {
		slug = fallback
	}
	return slug + Ext
}
