// Package renderer performs full catalog synthesis: one finished document per
// product, produced from the shared template. A render pass is authoritative,
// it overwrites previous documents without backups.
package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Houeta/page-press/internal/document"
	"github.com/Houeta/page-press/internal/markup"
	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
	"github.com/Houeta/page-press/internal/repository"
)

// Renderer renders the whole catalog into the output directory.
type Renderer struct {
	log          *slog.Logger
	repo         repository.ProductRepository
	templatePath string
	outputDir    string
}

// Failure records one product whose document could not be written.
type Failure struct {
	ProductID string
	Err       error
}

// Report summarizes a render pass.
type Report struct {
	Rendered    int
	AssignedIDs int
	Failures    []Failure
}

// NewRenderer creates a new Renderer instance.
func NewRenderer(log *slog.Logger, repo repository.ProductRepository, templatePath, outputDir string) *Renderer {
	return &Renderer{log: log, repo: repo, templatePath: templatePath, outputDir: outputDir}
}

// RenderAll regenerates every product's document. An unreadable template or
// database aborts the run; a single product's failure is logged and the
// remaining products are still rendered.
func (r *Renderer) RenderAll(ctx context.Context) (*Report, error) {
	const opn = "renderer.RenderAll"
	log := r.log.With("op", opn)

	raw, err := os.ReadFile(r.templatePath)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read template: %w", opn, err)
	}
	template := string(raw)

	products, err := r.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list products: %w", opn, err)
	}
	log.InfoContext(ctx, "Starting full render", "products", len(products))

	assigned, err := r.assignDisplayIDs(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("%s: display id assignment failed: %w", opn, err)
	}

	if err = os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create output dir: %w", opn, err)
	}

	report := &Report{AssignedIDs: assigned}
	for i := range products {
		product := &products[i]

		if err = r.ensurePage(ctx, product); err != nil {
			log.WarnContext(ctx, "failed to persist page filename", "product", product.ID, "error", err)
		}

		text, _ := document.Sanitize(r.renderDocument(template, product))

		path := filepath.Join(r.outputDir, product.Page)
		if err = os.WriteFile(path, []byte(text), 0o644); err != nil {
			log.ErrorContext(ctx, "failed to write document", "product", product.ID, "path", path, "error", err)
			report.Failures = append(report.Failures, Failure{ProductID: product.ID, Err: err})
			continue
		}

		log.DebugContext(ctx, "Rendered document", "product", product.ID, "path", path)
		report.Rendered++
	}

	log.InfoContext(ctx, "Render pass complete",
		"rendered", report.Rendered, "failed", len(report.Failures), "assigned_ids", assigned)

	return report, nil
}

// ensurePage derives the document filename from the title on first render
// and persists it; an already-assigned filename is never recomputed, it is
// the product's externally visible URL.
func (r *Renderer) ensurePage(ctx context.Context, product *models.Product) error {
	if product.Page != "" {
		return nil
	}
	product.Page = document.Slug(product.Title, product.ID)
	return r.repo.UpdatePage(ctx, product.ID, product.Page)
}

// renderDocument substitutes every placeholder token with the product's
// computed values. Duplicate tokens, including the legacy main-image alias,
// all resolve from the same source value.
func (r *Renderer) renderDocument(template string, product *models.Product) string {
	quote := pricing.Resolve(product.Price, product.Sale)
	marker := document.MarkerHTML(document.MarkerAttrs(product, product.Sale, quote))

	detailsJSON, _ := json.Marshal(product.Details)

	return strings.NewReplacer(
		"{{id}}", escape(product.ID),
		"{{display_id}}", escape(product.DisplayID()),
		"{{title}}", escape(product.Title),
		"{{description}}", escape(product.Desc),
		"{{price}}", pricing.USD(quote.UnitPrice),
		"{{image}}", escape(product.MainImage()),
		"{{main_image}}", escape(product.MainImage()),
		"{{thumbnails}}", thumbnailsHTML(product),
		"{{page}}", escape(product.Page),
		"{{reviews_url}}", escape("/reviews/"+product.ID),
		"{{details_json}}", string(detailsJSON),
		"{{details_html}}", detailsHTML(product.Details),
		"{{sale_json}}", document.EncodeSale(product.Sale),
		"{{sale_html}}", document.RibbonHTML(quote),
		"{{price_html}}", document.PriceHTML(quote),
		"{{total_html}}", document.TotalHTML(quote),
		"{{marker}}", marker,
	).Replace(template)
}

func thumbnailsHTML(product *models.Product) string {
	var b strings.Builder
	for _, img := range product.Images {
		fmt.Fprintf(&b, `<img class="thumb" src="%s" alt="%s">`, escape(img), escape(product.Title))
	}
	return b.String()
}

func detailsHTML(details map[string]string) string {
	if len(details) == 0 {
		return `<dl class="details"></dl>`
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<dl class="details">`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<dt>%s</dt><dd>%s</dd>", escape(k), escape(details[k]))
	}
	b.WriteString("</dl>")
	return b.String()
}

// escape covers both text and attribute positions, so a token may appear in
// either inside the template.
func escape(s string) string { return markup.EscapeAttr(s) }
