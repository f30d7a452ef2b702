package models

import "time"

// Order statuses.
const (
	OrderStatusCreated       = "CREATED"
	OrderStatusPlaced        = "PLACED"
	OrderStatusPaymentFailed = "PAYMENT_FAILED"
	OrderStatusCancelled     = "CANCELLED"
)

// Order represents a customer order for a single product.
type Order struct {
	OrderID     uint64    `gorm:"column:order_id;primaryKey;autoIncrement"`
	ProductID   uint64    `gorm:"column:product_id;index"`
	Quantity    int64     `gorm:"column:quantity"`
	Amount      float64   `gorm:"column:amount"`
	PaymentMode string    `gorm:"column:payment_mode;type:varchar(32)"`
	OrderStatus string    `gorm:"column:order_status;type:varchar(32);index"`
	OrderDate   time.Time `gorm:"column:order_date;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
