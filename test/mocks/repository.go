// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Houeta/page-press/internal/models"
)

// ProductRepository is a testify mock of repository.ProductRepository.
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]models.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) UpdateDetails(ctx context.Context, id string, details map[string]string) error {
	args := m.Called(ctx, id, details)
	return args.Error(0)
}

func (m *ProductRepository) UpdatePage(ctx context.Context, id string, page string) error {
	args := m.Called(ctx, id, page)
	return args.Error(0)
}

func (m *ProductRepository) UpdateSale(ctx context.Context, id string, sale *models.SaleState) error {
	args := m.Called(ctx, id, sale)
	return args.Error(0)
}
