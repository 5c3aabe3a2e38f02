package repository

import (
	"context"
	"errors"

	"github.com/Houeta/page-press/internal/models"
)

// ErrProductNotFound is returned when no product exists for the given id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the read/write surface of the product database the
// generator needs. Catalog records are owned elsewhere; the generator only
// lists and reads them, and writes back the display id assigned on first
// render, the derived page filename and toggled sale state.
type ProductRepository interface {
	// ListProducts returns the whole catalog ordered by product id.
	ListProducts(ctx context.Context) ([]models.Product, error)
	// GetProduct returns one product or ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// UpdateDetails replaces the details map of a product.
	UpdateDetails(ctx context.Context, id string, details map[string]string) error
	// UpdatePage persists the derived document filename.
	UpdatePage(ctx context.Context, id string, page string) error
	// UpdateSale replaces the sale descriptor; nil clears it.
	UpdateSale(ctx context.Context, id string, sale *models.SaleState) error
}

// SubscriptionRepository stores the chats that receive sale-change notices.
type SubscriptionRepository interface {
	SubscribeChat(ctx context.Context, chatID int64) error
	UnsubscribeChat(ctx context.Context, chatID int64) error
	GetSubscribedChats(ctx context.Context) ([]int64, error)
}
