package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name         string
		base         decimal.Decimal
		sale         *models.SaleState
		wantUnit     string
		wantOriginal string
		wantDisc     bool
		wantPercent  int64
		wantHasPct   bool
	}{
		{
			name:         "no sale",
			base:         dec("100"),
			sale:         nil,
			wantUnit:     "100.00",
			wantOriginal: "100.00",
		},
		{
			name:         "active sale with prev price",
			base:         dec("100"),
			sale:         &models.SaleState{Active: true, Price: dec("80"), PrevPrice: decPtr("100")},
			wantUnit:     "80.00",
			wantOriginal: "100.00",
			wantDisc:     true,
			wantPercent:  20,
			wantHasPct:   true,
		},
		{
			name:         "active sale without prev price falls back to base",
			base:         dec("50"),
			sale:         &models.SaleState{Active: true, Price: dec("40")},
			wantUnit:     "40.00",
			wantOriginal: "50.00",
			wantDisc:     true,
			wantPercent:  20,
			wantHasPct:   true,
		},
		{
			name:         "inactive sale is ignored",
			base:         dec("100"),
			sale:         &models.SaleState{Active: false, Price: dec("80")},
			wantUnit:     "100.00",
			wantOriginal: "100.00",
		},
		{
			name:         "active sale with zero price is treated as no sale",
			base:         dec("100"),
			sale:         &models.SaleState{Active: true, Price: dec("0")},
			wantUnit:     "100.00",
			wantOriginal: "100.00",
		},
		{
			name:         "active sale with negative price is treated as no sale",
			base:         dec("100"),
			sale:         &models.SaleState{Active: true, Price: dec("-5")},
			wantUnit:     "100.00",
			wantOriginal: "100.00",
		},
		{
			name:         "non-positive prev price falls back to base",
			base:         dec("120"),
			sale:         &models.SaleState{Active: true, Price: dec("90"), PrevPrice: decPtr("0")},
			wantUnit:     "90.00",
			wantOriginal: "120.00",
			wantDisc:     true,
			wantPercent:  25,
			wantHasPct:   true,
		},
		{
			name:         "free base product on sale has no percent label",
			base:         dec("0"),
			sale:         &models.SaleState{Active: true, Price: dec("10")},
			wantUnit:     "10.00",
			wantOriginal: "0.00",
			wantDisc:     true,
			wantHasPct:   false,
		},
		{
			name:         "percent is rounded",
			base:         dec("30"),
			sale:         &models.SaleState{Active: true, Price: dec("20"), PrevPrice: decPtr("30")},
			wantUnit:     "20.00",
			wantOriginal: "30.00",
			wantDisc:     true,
			wantPercent:  33,
			wantHasPct:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote := pricing.Resolve(tc.base, tc.sale)

			assert.Equal(t, tc.wantUnit, quote.UnitPrice.StringFixed(2))
			assert.Equal(t, tc.wantOriginal, quote.OriginalPrice.StringFixed(2))
			assert.Equal(t, tc.wantDisc, quote.Discounted)
			assert.Equal(t, tc.wantHasPct, quote.HasPercent)
			if tc.wantHasPct {
				assert.Equal(t, tc.wantPercent, quote.PercentOff)
			}
		})
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	sale := &models.SaleState{Active: true, Price: dec("80"), PrevPrice: decPtr("100")}

	first := pricing.Resolve(dec("100"), sale)
	second := pricing.Resolve(dec("100"), sale)

	assert.Equal(t, first, second)
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$100.00", pricing.USD(dec("100")))
	assert.Equal(t, "$80.50", pricing.USD(dec("80.5")))
	assert.Equal(t, "$0.00", pricing.USD(dec("0")))
}
