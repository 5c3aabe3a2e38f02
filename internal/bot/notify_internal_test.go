package bot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
)

func TestSaleMessage(t *testing.T) {
	product := &models.Product{ID: "p1", Title: "Blue Mug", Price: decimal.NewFromInt(100)}

	t.Run("sale started with percent", func(t *testing.T) {
		quote := pricing.Resolve(product.Price, &models.SaleState{
			Active: true,
			Price:  decimal.NewFromInt(80),
		})

		assert.Equal(t, "Blue Mug: now $80.00 (was $100.00, -20%).", saleMessage(product, quote))
	})

	t.Run("sale started without percent", func(t *testing.T) {
		quote := pricing.Resolve(decimal.Zero, &models.SaleState{
			Active: true,
			Price:  decimal.NewFromInt(10),
		})

		assert.Equal(t, "Blue Mug: now on sale for $10.00.", saleMessage(product, quote))
	})

	t.Run("sale ended", func(t *testing.T) {
		quote := pricing.Resolve(product.Price, nil)

		assert.Equal(t, "Blue Mug: sale ended, price is back to $100.00.", saleMessage(product, quote))
	})
}
