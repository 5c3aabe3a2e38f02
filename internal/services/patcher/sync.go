package patcher

import (
	"context"
	"fmt"
)

// Failure records one product whose patch did not go through.
type Failure struct {
	ProductID string
	Err       error
}

// SyncReport summarizes a SyncActiveSales pass.
type SyncReport struct {
	Patched  int
	Skipped  int // products without an effectively active sale
	Failures []Failure
}

// SyncActiveSales force-patches every product currently carrying an
// effectively active sale. One product's failure is logged and does not stop
// the rest.
func (p *Patcher) SyncActiveSales(ctx context.Context) (*SyncReport, error) {
	const opn = "patcher.SyncActiveSales"
	log := p.log.With("op", opn)

	products, err := p.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list products: %w", opn, err)
	}

	report := &SyncReport{}
	for i := range products {
		product := &products[i]
		if !product.Sale.Effective() {
			report.Skipped++
			continue
		}

		if _, err = p.Apply(ctx, product.ID, false); err != nil {
			log.ErrorContext(ctx, "failed to patch product", "product", product.ID, "error", err)
			report.Failures = append(report.Failures, Failure{ProductID: product.ID, Err: err})
			continue
		}
		report.Patched++
	}

	log.InfoContext(ctx, "Sale sync complete",
		"patched", report.Patched, "skipped", report.Skipped, "failed", len(report.Failures))

	return report, nil
}
