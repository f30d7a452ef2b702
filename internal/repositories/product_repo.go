package repositories

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientQuantity is returned when stock cannot cover a reduction.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Sort orders a listing by a column. An empty Column means primary key order.
type Sort struct {
	Column string
	Desc   bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, sort Sort) ([]models.Product, error)
	GetPage(ctx context.Context, offset, limit int, sort Sort) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint64) (*models.Product, error)
	FindByNameContains(ctx context.Context, name string) ([]models.Product, error)
	CountByNameEquals(ctx context.Context, name string) (int64, error)
	FindByType(ctx context.Context, productType string) ([]models.Product, error)
	FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error)
	FindByPriceGreaterThanEqual(ctx context.Context, price float64) ([]models.Product, error)
	FindByPriceLessThan(ctx context.Context, price float64) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	CreateAll(ctx context.Context, products []models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	TotalCost(ctx context.Context) (float64, error)
	ReduceQuantity(ctx context.Context, id uint64, quantity int64) error
}
