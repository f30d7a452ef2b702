package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint64) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus moves order id from status from to status to. It returns
	// ErrNotFound when no order id is currently in status from.
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	// FindByStatusBefore lists orders in status whose order date is before t.
	FindByStatusBefore(ctx context.Context, status string, t time.Time) ([]models.Order, error)
}
