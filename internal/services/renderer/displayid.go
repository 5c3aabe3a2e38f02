package renderer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Houeta/page-press/internal/models"
)

var displayIDPattern = regexp.MustCompile(`^([A-Z0-9]+)-(\d+)$`)

// AssignDisplayIDs runs display-id assignment as an explicit migration over
// the whole catalog and returns the number of ids assigned.
func (r *Renderer) AssignDisplayIDs(ctx context.Context) (int, error) {
	const opn = "renderer.AssignDisplayIDs"

	products, err := r.repo.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list products: %w", opn, err)
	}

	assigned, err := r.assignDisplayIDs(ctx, products)
	if err != nil {
		return assigned, fmt.Errorf("%s: %w", opn, err)
	}
	return assigned, nil
}

// assignDisplayIDs fills in missing display ids in one pass over the full
// catalog. Counters are seeded from the highest numeric suffix already
// persisted for each prefix, so a newly assigned id can never collide with
// one handed out in an earlier run, regardless of catalog ordering.
func (r *Renderer) assignDisplayIDs(ctx context.Context, products []models.Product) (int, error) {
	counters := make(map[string]int)
	for i := range products {
		prefix, n, ok := splitDisplayID(products[i].DisplayID())
		if ok && n > counters[prefix] {
			counters[prefix] = n
		}
	}

	assigned := 0
	for i := range products {
		product := &products[i]
		if product.DisplayID() != "" {
			continue
		}

		prefix := categoryPrefix(product.Category)
		counters[prefix]++

		if product.Details == nil {
			product.Details = make(map[string]string)
		}
		product.Details[models.DetailDisplayID] = fmt.Sprintf("%s-%03d", prefix, counters[prefix])

		if err := r.repo.UpdateDetails(ctx, product.ID, product.Details); err != nil {
			return assigned, fmt.Errorf("failed to persist display id for %s: %w", product.ID, err)
		}

		r.log.DebugContext(ctx, "Assigned display id",
			"product", product.ID, "display_id", product.Details[models.DetailDisplayID])
		assigned++
	}

	return assigned, nil
}

func splitDisplayID(id string) (prefix string, n int, ok bool) {
	m := displayIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// categoryPrefix reduces a category to the first three of its ASCII letters
// and digits, uppercased; GEN when nothing usable remains.
func categoryPrefix(category string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(category) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}
