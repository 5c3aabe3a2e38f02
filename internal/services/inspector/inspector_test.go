package inspector_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/services/inspector"
	"github.com/Houeta/page-press/test/mocks"
)

const goodDoc = `<!DOCTYPE html>
<html><body>
<span class="snipcart-add-item" data-item-id="p1" data-item-price="100.00"></span>
<span id="product-price">$100.00</span>
<span id="total-price">$100.00</span>
<div id="sale-ribbon" hidden></div>
</body></html>`

const brokenDoc = `<!DOCTYPE html>
<html><body><p>someone deleted everything important</p></body></html>`

func newTestInspector(t *testing.T, products []models.Product, files map[string]string) (*inspector.Inspector, string) {
	t.Helper()

	outputDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0o644))
	}

	mRepo := new(mocks.ProductRepository)
	mRepo.On("ListProducts", context.Background()).Return(products, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return inspector.NewInspector(logger, mRepo, outputDir), outputDir
}

func TestScan(t *testing.T) {
	products := []models.Product{
		{ID: "p1", Title: "Mug", Page: "mug.html"},
		{ID: "p2", Title: "Pot", Page: "pot.html"},
	}
	files := map[string]string{
		"mug.html":                               goodDoc,
		"pot.html":                               brokenDoc,
		"ghost.html":                             goodDoc, // matches no product: an orphan
		"mug.html.bak.20260828T120000.000000000": goodDoc, // backups are not documents
	}

	insp, _ := newTestInspector(t, products, files)

	report, err := insp.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Documents, 3)
	assert.Equal(t, []string{"ghost.html"}, report.Orphans)

	byFile := make(map[string]inspector.DocumentReport)
	for _, d := range report.Documents {
		byFile[d.File] = d
	}

	mug := byFile["mug.html"]
	assert.True(t, mug.HasMarker)
	assert.True(t, mug.HasPrice)
	assert.True(t, mug.HasTotal)
	assert.True(t, mug.HasRibbon)
	assert.Equal(t, "p1", mug.ProductID)
	assert.False(t, mug.Orphan)

	pot := byFile["pot.html"]
	assert.False(t, pot.HasMarker)
	assert.False(t, pot.HasPrice)
	assert.Empty(t, pot.ProductID)

	assert.True(t, byFile["ghost.html"].Orphan)
}

func TestCleanupOrphans(t *testing.T) {
	products := []models.Product{{ID: "p1", Title: "Mug", Page: "mug.html"}}
	files := map[string]string{
		"mug.html":   goodDoc,
		"ghost.html": goodDoc,
	}

	t.Run("dry run lists without deleting", func(t *testing.T) {
		insp, outputDir := newTestInspector(t, products, files)

		orphans, err := insp.CleanupOrphans(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, []string{"ghost.html"}, orphans)

		_, err = os.Stat(filepath.Join(outputDir, "ghost.html"))
		assert.NoError(t, err)
	})

	t.Run("apply deletes orphans only", func(t *testing.T) {
		insp, outputDir := newTestInspector(t, products, files)

		orphans, err := insp.CleanupOrphans(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, []string{"ghost.html"}, orphans)

		_, err = os.Stat(filepath.Join(outputDir, "ghost.html"))
		assert.True(t, os.IsNotExist(err))

		_, err = os.Stat(filepath.Join(outputDir, "mug.html"))
		assert.NoError(t, err)
	})
}
