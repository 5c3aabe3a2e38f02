// Package inspector is the reporting pass over the output directory: it
// checks every generated document for the structures the storefront depends
// on and flags orphaned documents whose filename matches no catalog record.
// Unlike the patch engine it never writes documents, so it is free to use a
// real HTML parser.
package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Houeta/page-press/internal/document"
	"github.com/Houeta/page-press/internal/repository"
)

type Inspector struct {
	log       *slog.Logger
	repo      repository.ProductRepository
	outputDir string
}

// DocumentReport is the structural summary of one generated document.
type DocumentReport struct {
	File      string
	ProductID string // from the marker element; "" when the marker is missing
	HasMarker bool
	HasPrice  bool
	HasTotal  bool
	HasRibbon bool
	Orphan    bool
}

// Report summarizes a scan of the whole output directory.
type Report struct {
	Documents []DocumentReport
	Orphans   []string
}

// NewInspector creates a new Inspector instance.
func NewInspector(log *slog.Logger, repo repository.ProductRepository, outputDir string) *Inspector {
	return &Inspector{log: log, repo: repo, outputDir: outputDir}
}

// Scan reads every document in the output directory and reports its
// structure. Documents that fail to parse are reported with all checks false
// rather than aborting the scan.
func (i *Inspector) Scan(ctx context.Context) (*Report, error) {
	const opn = "inspector.Scan"
	log := i.log.With("op", opn)

	expected, err := i.expectedPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	entries, err := os.ReadDir(i.outputDir)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read output dir: %w", opn, err)
	}

	report := &Report{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, document.Ext) {
			continue
		}

		docReport := DocumentReport{File: name, Orphan: !expected[name]}
		if docReport.Orphan {
			report.Orphans = append(report.Orphans, name)
		}

		if err = i.inspectDocument(filepath.Join(i.outputDir, name), &docReport); err != nil {
			log.WarnContext(ctx, "failed to inspect document", "file", name, "error", err)
		}

		report.Documents = append(report.Documents, docReport)
	}

	log.InfoContext(ctx, "Scan complete",
		"documents", len(report.Documents), "orphans", len(report.Orphans))

	return report, nil
}

func (i *Inspector) inspectDocument(path string, docReport *DocumentReport) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return fmt.Errorf("document cannot be parsed as HTML: %w", err)
	}

	marker := doc.Find("span." + document.MarkerClass).First()
	docReport.HasMarker = marker.Length() > 0
	if docReport.HasMarker {
		docReport.ProductID, _ = marker.Attr(document.AttrID)
	}
	docReport.HasPrice = doc.Find("#"+document.PriceSpanID).Length() > 0
	docReport.HasTotal = doc.Find("#"+document.TotalSpanID).Length() > 0
	docReport.HasRibbon = doc.Find("#"+document.SaleRibbonID).Length() > 0

	return nil
}

// CleanupOrphans lists the orphaned documents and, when apply is set,
// deletes them. This is the only path that ever removes a generated
// document; backups are left alone either way.
func (i *Inspector) CleanupOrphans(ctx context.Context, apply bool) ([]string, error) {
	const opn = "inspector.CleanupOrphans"

	report, err := i.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	if apply {
		for _, name := range report.Orphans {
			path := filepath.Join(i.outputDir, name)
			if err = os.Remove(path); err != nil {
				return report.Orphans, fmt.Errorf("%s: failed to remove %s: %w", opn, name, err)
			}
			i.log.InfoContext(ctx, "Removed orphaned document", "op", opn, "file", name)
		}
	}

	return report.Orphans, nil
}

func (i *Inspector) expectedPages(ctx context.Context) (map[string]bool, error) {
	products, err := i.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	expected := make(map[string]bool, len(products))
	for _, product := range products {
		if product.Page != "" {
			expected[product.Page] = true
		}
	}
	return expected, nil
}
