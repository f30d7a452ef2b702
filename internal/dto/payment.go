package dto

import "time"

// PaymentRequest is sent to the payment service for a newly created order.
type PaymentRequest struct {
	OrderID         uint64  `json:"orderId"`
	Amount          float64 `json:"amount"`
	PaymentMode     string  `json:"paymentMode"`
	ReferenceNumber string  `json:"referenceNumber"`
}

// PaymentResponse is what the payment service reports for an order.
type PaymentResponse struct {
	PaymentID   uint64    `json:"paymentId"`
	Status      string    `json:"status"`
	PaymentMode string    `json:"paymentMode"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"paymentDate"`
	OrderID     uint64    `json:"orderId"`
}
