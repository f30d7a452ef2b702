package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll returns all orders, newest first.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("order_date DESC, order_id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// Create stores a new order. OrderDate defaults to now when unset.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND order_status = ?", id, from).
		Updates(map[string]interface{}{"order_status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d in status %s: %w", id, from, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) FindByStatusBefore(ctx context.Context, status string, t time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("order_status = ? AND order_date < ?", status, t).
		Order("order_id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s orders before %s: %w", status, t.Format(time.RFC3339), err)
	}
	return orders, nil
}
