// Package patcher applies a product's current sale state to its already
// generated document. It rewrites only the marker element, the two price
// regions and the discount ribbon; every other byte of the document,
// including manual edits, is carried over untouched. Commits are atomic:
// validate, write to a temp file, re-validate from disk, back up the
// original, rename.
package patcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Houeta/page-press/internal/document"
	"github.com/Houeta/page-press/internal/markup"
	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
	"github.com/Houeta/page-press/internal/repository"
)

var (
	// ErrNoPage means the product has no generated document to patch.
	ErrNoPage = errors.New("product has no generated page")

	// ErrRegionMissing means a required document region was not found; the
	// document is left untouched.
	ErrRegionMissing = errors.New("required region not found")

	// ErrValidation means the mutation candidate failed the structural check
	// and was discarded without touching the original file.
	ErrValidation = errors.New("patched document failed validation")
)

const backupTimeLayout = "20060102T150405.000000000"

// Patcher is the one canonical patch engine; every operational tool goes
// through Apply.
type Patcher struct {
	log       *slog.Logger
	repo      repository.ProductRepository
	outputDir string
	now       func() time.Time
}

// Result reports a successful patch.
type Result struct {
	ProductID  string
	Page       string
	BackupPath string // empty on a dry run
	DryRun     bool
}

// NewPatcher creates a new Patcher instance.
func NewPatcher(log *slog.Logger, repo repository.ProductRepository, outputDir string) *Patcher {
	return &Patcher{log: log, repo: repo, outputDir: outputDir, now: time.Now}
}

// Apply patches one product's document to reflect the sale state currently
// persisted in the product database. Applying the same state twice yields
// byte-identical output on the second run. With dryRun the candidate is
// computed and validated but nothing is written.
func (p *Patcher) Apply(ctx context.Context, productID string, dryRun bool) (*Result, error) {
	const opn = "patcher.Apply"
	log := p.log.With("op", opn, "product", productID)

	product, err := p.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	if product.Page == "" {
		return nil, fmt.Errorf("%s: %w", opn, ErrNoPage)
	}

	path := filepath.Join(p.outputDir, product.Page)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read document: %w", opn, err)
	}
	original := string(raw)

	// An inactive or non-positive sale is patched in as a definite no-sale.
	sale := product.Sale
	if !sale.Effective() {
		sale = nil
	}
	quote := pricing.Resolve(product.Price, sale)

	candidate, err := p.patchText(ctx, original, product, sale, quote)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	if err = document.Validate(candidate); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opn, ErrValidation, err)
	}

	result := &Result{ProductID: productID, Page: product.Page, DryRun: dryRun}
	if dryRun {
		log.InfoContext(ctx, "Dry run: candidate valid, nothing written", "path", path)
		return result, nil
	}

	if result.BackupPath, err = p.commit(path, original, candidate); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	log.InfoContext(ctx, "Document patched",
		"path", path, "backup", result.BackupPath, "discounted", quote.Discounted)

	return result, nil
}

// patchText produces the mutation candidate: merged marker attributes, fresh
// price and total regions, fresh ribbon, then the duplicate-fragment pass.
func (p *Patcher) patchText(
	ctx context.Context,
	text string,
	product *models.Product,
	sale *models.SaleState,
	quote pricing.Quote,
) (string, error) {
	text, err := p.patchMarker(text, product, sale, quote)
	if err != nil {
		return "", err
	}

	if text, err = replaceRegion(text, "span", document.PriceSpanID, document.PriceHTML(quote)); err != nil {
		return "", err
	}
	if text, err = replaceRegion(text, "span", document.TotalSpanID, document.TotalHTML(quote)); err != nil {
		return "", err
	}
	if text, err = replaceRegion(text, "div", document.SaleRibbonID, document.RibbonHTML(quote)); err != nil {
		return "", err
	}

	text, stripped := document.Sanitize(text)
	if stripped > 0 {
		p.log.WarnContext(ctx, "Stripped duplicated document fragments",
			"product", product.ID, "fragments", stripped)
	}

	return text, nil
}

// patchMarker rebuilds the marker element's opening tag from the merged
// attribute set. Explicitly asserted fields win; every other attribute the
// markup already carried is preserved. When the marker is gone entirely, one
// fallback insertion point is tried; past that the patch refuses to guess.
func (p *Patcher) patchMarker(
	text string,
	product *models.Product,
	sale *models.SaleState,
	quote pricing.Quote,
) (string, error) {
	desired := document.MarkerAttrs(product, sale, quote)

	if idx := strings.Index(text, document.MarkerSignature); idx >= 0 {
		start := strings.LastIndex(text[:idx], "<")
		if start < 0 {
			return "", fmt.Errorf("marker signature outside a tag: %w", document.ErrMarkerMissing)
		}
		end, err := markup.TagEnd(text, start)
		if err != nil {
			return "", fmt.Errorf("marker tag: %w", err)
		}

		merged := markup.Merge(desired, markup.ParseAttrs(text[start:end+1]))
		return text[:start] + markup.BuildTag("span", merged) + text[end+1:], nil
	}

	fb := strings.Index(text, document.FallbackSignature)
	if fb < 0 {
		return "", document.ErrMarkerMissing
	}
	end, err := markup.TagEnd(text, fb)
	if err != nil {
		return "", fmt.Errorf("fallback wrapper tag: %w", err)
	}

	return text[:end+1] + document.MarkerHTML(desired) + text[end+1:], nil
}

// replaceRegion swaps the first occurrence of the element carrying the given
// id, wholesale, for the replacement fragment.
func replaceRegion(text, element, id, replacement string) (string, error) {
	needle := fmt.Sprintf("id=%q", id)
	idx := strings.Index(text, needle)
	if idx < 0 {
		return "", fmt.Errorf("region %q: %w", id, ErrRegionMissing)
	}

	start := strings.LastIndex(text[:idx], "<")
	if start < 0 {
		return "", fmt.Errorf("region %q: %w", id, ErrRegionMissing)
	}

	openEnd, err := markup.TagEnd(text, start)
	if err != nil {
		return "", fmt.Errorf("region %q: %w", id, err)
	}

	closing := "</" + element + ">"
	rel := strings.Index(text[openEnd+1:], closing)
	if rel < 0 {
		return "", fmt.Errorf("region %q missing %s: %w", id, closing, ErrRegionMissing)
	}
	end := openEnd + 1 + rel + len(closing)

	return text[:start] + replacement + text[end:], nil
}

// commit writes the candidate next to the document, re-reads and re-validates
// it from disk, copies the original to a timestamped backup, then renames the
// temp file over the original. Any failure before the rename leaves the
// original untouched.
func (p *Patcher) commit(path, original, candidate string) (string, error) {
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err := os.WriteFile(tmp, []byte(candidate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	onDisk, err := os.ReadFile(tmp)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to read back temp file: %w", err)
	}
	if string(onDisk) != candidate {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: temp file readback differs from candidate", ErrValidation)
	}
	if err = document.Validate(string(onDisk)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	backup := fmt.Sprintf("%s.bak.%s", path, p.now().UTC().Format(backupTimeLayout))
	if err = os.WriteFile(backup, []byte(original), 0o644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to replace document: %w", err)
	}

	return backup, nil
}
