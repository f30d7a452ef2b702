package dto

import (
	"time"

	"storefront/internal/models"
)

// Accepted payment modes.
const (
	PaymentModeCash       = "CASH"
	PaymentModePaypal     = "PAYPAL"
	PaymentModeDebitCard  = "DEBIT_CARD"
	PaymentModeCreditCard = "CREDIT_CARD"
	PaymentModeApplePay   = "APPLE_PAY"
)

// OrderRequest is the body of POST /api/order/placeOrder.
type OrderRequest struct {
	ProductID   uint64  `json:"productId" validate:"required,gt=0"`
	TotalAmount float64 `json:"totalAmount" validate:"gte=0"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0"`
	PaymentMode string  `json:"paymentMode" validate:"required,oneof=CASH PAYPAL DEBIT_CARD CREDIT_CARD APPLE_PAY"`
}

type PlaceOrderResponse struct {
	OrderID uint64 `json:"orderId"`
}

// OrderResponse is an order enriched with product and payment details when
// the downstream services could provide them.
type OrderResponse struct {
	OrderID        uint64          `json:"orderId"`
	OrderDate      time.Time       `json:"orderDate"`
	OrderStatus    string          `json:"orderStatus"`
	Amount         float64         `json:"amount"`
	Quantity       int64           `json:"quantity"`
	PaymentMode    string          `json:"paymentMode"`
	ProductDetails *ProductDetails `json:"productDetails,omitempty"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

type ProductDetails struct {
	ProductID   uint64  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
}

type PaymentDetails struct {
	PaymentID     uint64    `json:"paymentId"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMode   string    `json:"paymentMode"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
}

func NewOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		OrderID:     o.OrderID,
		OrderDate:   o.OrderDate,
		OrderStatus: o.OrderStatus,
		Amount:      o.Amount,
		Quantity:    o.Quantity,
		PaymentMode: o.PaymentMode,
	}
}
