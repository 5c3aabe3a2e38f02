package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/repository"
)

const productColumns = "id, title, description, price, category, images, details, sale, page"

// ListProducts returns the whole catalog ordered by product id. The order is
// deliberately stable: display-id assignment walks this list and relies on
// seeing the catalog in the same sequence every run.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	const opn = "repository.sqlite.ListProducts"

	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query products: %w", opn, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return products, nil
}

// GetProduct returns a single product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const opn = "repository.sqlite.GetProduct"

	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: failed to get product %s: %w", opn, id, err)
	}

	return product, nil
}

// SaveProduct inserts or replaces a whole catalog record.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	const opn = "repository.sqlite.SaveProduct"

	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("%s: failed to encode images: %w", opn, err)
	}
	details, err := json.Marshal(product.Details)
	if err != nil {
		return fmt.Errorf("%s: failed to encode details: %w", opn, err)
	}
	sale, err := encodeSale(product.Sale)
	if err != nil {
		return fmt.Errorf("%s: failed to encode sale: %w", opn, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Title, product.Desc, product.Price.String(),
		product.Category, string(images), string(details), sale, product.Page)
	if err != nil {
		return fmt.Errorf("%s: failed to save product %s: %w", opn, product.ID, err)
	}

	return nil
}

// UpdateDetails replaces the details map of a product.
func (r *Repository) UpdateDetails(ctx context.Context, id string, details map[string]string) error {
	const opn = "repository.sqlite.UpdateDetails"

	encoded, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("%s: failed to encode details: %w", opn, err)
	}

	return r.updateColumn(ctx, opn, id, "details", string(encoded))
}

// UpdatePage persists the derived document filename.
func (r *Repository) UpdatePage(ctx context.Context, id string, page string) error {
	return r.updateColumn(ctx, "repository.sqlite.UpdatePage", id, "page", page)
}

// UpdateSale replaces the sale descriptor of a product; nil clears it.
func (r *Repository) UpdateSale(ctx context.Context, id string, sale *models.SaleState) error {
	const opn = "repository.sqlite.UpdateSale"

	encoded, err := encodeSale(sale)
	if err != nil {
		return fmt.Errorf("%s: failed to encode sale: %w", opn, err)
	}

	result, err := r.db.ExecContext(ctx, "UPDATE products SET sale = ? WHERE id = ?", encoded, id)
	if err != nil {
		return fmt.Errorf("%s: failed to update sale for %s: %w", opn, id, err)
	}

	return checkAffected(opn, result)
}

func (r *Repository) updateColumn(ctx context.Context, opn, id, column, value string) error {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE products SET %s = ? WHERE id = ?", column), value, id)
	if err != nil {
		return fmt.Errorf("%s: failed to update %s for %s: %w", opn, column, id, err)
	}

	return checkAffected(opn, result)
}

func checkAffected(opn string, result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}
	if affected == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func encodeSale(sale *models.SaleState) (sql.NullString, error) {
	if sale == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(sale)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// scanProduct decodes one row into a Product via the given Scan function, so
// it serves both QueryRowContext and rows iteration.
func scanProduct(scan func(dest ...any) error) (*models.Product, error) {
	var (
		product models.Product
		price   string
		images  string
		details string
		sale    sql.NullString
	)

	err := scan(&product.ID, &product.Title, &product.Desc, &price,
		&product.Category, &images, &details, &sale, &product.Page)
	if err != nil {
		return nil, err
	}

	if product.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if err = json.Unmarshal([]byte(images), &product.Images); err != nil {
		return nil, fmt.Errorf("invalid images payload: %w", err)
	}
	if err = json.Unmarshal([]byte(details), &product.Details); err != nil {
		return nil, fmt.Errorf("invalid details payload: %w", err)
	}
	if sale.Valid {
		var state models.SaleState
		if err = json.Unmarshal([]byte(sale.String), &state); err != nil {
			return nil, fmt.Errorf("invalid sale payload: %w", err)
		}
		product.Sale = &state
	}

	return &product, nil
}
