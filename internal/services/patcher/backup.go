package patcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrNoBackups means no backup exists for the product's document.
var ErrNoBackups = errors.New("no backups found")

// Backups returns the backup paths for a product's document, oldest first.
// The timestamp layout is fixed width, so the lexical order is chronological.
func (p *Patcher) Backups(ctx context.Context, productID string) ([]string, error) {
	const opn = "patcher.Backups"

	product, err := p.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	if product.Page == "" {
		return nil, fmt.Errorf("%s: %w", opn, ErrNoPage)
	}

	pattern := filepath.Join(p.outputDir, product.Page) + ".bak.*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: bad glob pattern: %w", opn, err)
	}
	sort.Strings(matches)

	return matches, nil
}

// Restore copies the most recent backup over the product's document and
// returns the backup path used. The restore itself takes no backup; backups
// are append-only and the one restored from is still there.
func (p *Patcher) Restore(ctx context.Context, productID string) (string, error) {
	const opn = "patcher.Restore"

	backups, err := p.Backups(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opn, err)
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("%s: %w", opn, ErrNoBackups)
	}
	latest := backups[len(backups)-1]

	raw, err := os.ReadFile(latest)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read backup: %w", opn, err)
	}

	// Backup names are "<doc>.bak.<timestamp>"; strip the suffix back off.
	path := latest[:strings.LastIndex(latest, ".bak.")]
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err = os.WriteFile(tmp, raw, 0o644); err != nil {
		return "", fmt.Errorf("%s: failed to write temp file: %w", opn, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%s: failed to replace document: %w", opn, err)
	}

	p.log.Info("Document restored from backup", "op", opn, "path", path, "backup", latest)

	return latest, nil
}
