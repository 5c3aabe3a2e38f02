package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/repository"
	"github.com/Houeta/page-press/internal/repository/sqlite"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// =============================================================================
// Integration Tests (using a real temporary database)
// =============================================================================

func TestRepository_Integration_ProductLifecycle(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	mug := &models.Product{
		ID:       "p1",
		Title:    "Blue Mug",
		Desc:     "A mug, blue",
		Price:    dec(t, "100"),
		Category: "Kitchen",
		Images:   []string{"https://img/mug.jpg"},
		Details:  map[string]string{"material": "ceramic"},
	}
	lamp := &models.Product{
		ID:       "p2",
		Title:    "Desk Lamp",
		Desc:     "Bright",
		Price:    dec(t, "40.50"),
		Category: "Office",
		Images:   []string{"https://img/lamp.jpg", "https://img/lamp2.jpg"},
		Details:  map[string]string{},
	}

	t.Run("get_from_empty_db", func(t *testing.T) {
		_, err := repo.GetProduct(ctx, "p1")
		require.ErrorIs(t, err, repository.ErrProductNotFound)
	})

	t.Run("save_and_get", func(t *testing.T) {
		require.NoError(t, repo.SaveProduct(ctx, mug))
		require.NoError(t, repo.SaveProduct(ctx, lamp))

		got, err := repo.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Blue Mug", got.Title)
		assert.True(t, got.Price.Equal(dec(t, "100")))
		assert.Equal(t, []string{"https://img/mug.jpg"}, got.Images)
		assert.Equal(t, map[string]string{"material": "ceramic"}, got.Details)
		assert.Nil(t, got.Sale)
	})

	t.Run("list_is_ordered_by_id", func(t *testing.T) {
		products, err := repo.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "p1", products[0].ID)
		assert.Equal(t, "p2", products[1].ID)
	})

	t.Run("update_details_persists_display_id", func(t *testing.T) {
		details := map[string]string{"material": "ceramic", models.DetailDisplayID: "KIT-001"}
		require.NoError(t, repo.UpdateDetails(ctx, "p1", details))

		got, err := repo.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "KIT-001", got.DisplayID())
	})

	t.Run("update_page", func(t *testing.T) {
		require.NoError(t, repo.UpdatePage(ctx, "p1", "blue_mug.html"))

		got, err := repo.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "blue_mug.html", got.Page)
	})

	t.Run("update_sale_and_clear", func(t *testing.T) {
		prev := dec(t, "100")
		sale := &models.SaleState{Active: true, Price: dec(t, "80"), PrevPrice: &prev}
		require.NoError(t, repo.UpdateSale(ctx, "p1", sale))

		got, err := repo.GetProduct(ctx, "p1")
		require.NoError(t, err)
		require.NotNil(t, got.Sale)
		assert.True(t, got.Sale.Active)
		assert.True(t, got.Sale.Price.Equal(dec(t, "80")))
		require.NotNil(t, got.Sale.PrevPrice)
		assert.True(t, got.Sale.PrevPrice.Equal(dec(t, "100")))

		require.NoError(t, repo.UpdateSale(ctx, "p1", nil))
		got, err = repo.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Nil(t, got.Sale)
	})

	t.Run("update_unknown_product", func(t *testing.T) {
		require.ErrorIs(t, repo.UpdatePage(ctx, "ghost", "x.html"), repository.ErrProductNotFound)
		require.ErrorIs(t, repo.UpdateSale(ctx, "ghost", nil), repository.ErrProductNotFound)
		require.ErrorIs(t, repo.UpdateDetails(ctx, "ghost", nil), repository.ErrProductNotFound)
	})
}

// =============================================================================
// Unit Tests (using sqlmock for failure scenarios)
// =============================================================================

// newMockedRepo creates a repository with a mocked database connection for testing failures.
func newMockedRepo(t *testing.T) (*sqlite.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := sqlite.NewForTest(mockDB)

	t.Cleanup(func() { mockDB.Close() })

	return repo, mock
}

func TestRepository_ListProducts_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("error_on_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		expectedErr := errors.New("db connection lost")
		mock.ExpectQuery("SELECT (.+) FROM products").WillReturnError(expectedErr)

		_, err := repo.ListProducts(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), expectedErr.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_malformed_price", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows([]string{
			"id", "title", "description", "price", "category", "images", "details", "sale", "page",
		}).AddRow("p1", "Mug", "", "not-a-price", "Kitchen", "[]", "{}", nil, "")
		mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(rows)

		_, err := repo.ListProducts(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid price")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_malformed_sale_payload", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows([]string{
			"id", "title", "description", "price", "category", "images", "details", "sale", "page",
		}).AddRow("p1", "Mug", "", "100", "Kitchen", "[]", "{}", "{broken", "")
		mock.ExpectQuery("SELECT (.+) FROM products").WillReturnRows(rows)

		_, err := repo.ListProducts(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid sale payload")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateSale_Failure(t *testing.T) {
	repo, mock := newMockedRepo(t)
	expectedErr := errors.New("disk I/O error")
	mock.ExpectExec("UPDATE products SET sale").WillReturnError(expectedErr)

	err := repo.UpdateSale(context.Background(), "p1", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), expectedErr.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}
