package models

import "time"

// Product represents a product in the catalog.
type Product struct {
	ProductID          uint64    `gorm:"column:product_id;primaryKey;autoIncrement"`
	ProductName        string    `gorm:"column:product_name;type:varchar(255)"`
	ProductDescription string    `gorm:"column:product_description;type:varchar(255)"`
	ProductType        string    `gorm:"column:product_type;type:varchar(255);index"`
	Price              float64   `gorm:"column:price"`
	Quantity           int64     `gorm:"column:quantity"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "product"
}
