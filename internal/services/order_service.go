package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProductClient is the subset of the product service the order service needs.
type ProductClient interface {
	ReduceQuantity(ctx context.Context, id uint64, quantity int64) error
	GetProduct(ctx context.Context, id uint64) (*dto.ProductResponse, error)
}

// PaymentClient is the subset of the payment service the order service needs.
type PaymentClient interface {
	DoPayment(ctx context.Context, req dto.PaymentRequest) (uint64, error)
	GetPaymentDetailsByOrderID(ctx context.Context, orderID uint64) (*dto.PaymentResponse, error)
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo  repositories.OrderRepository
	products   ProductClient
	payments   PaymentClient
	publisher  events.Publisher
	staleAfter time.Duration
}

// NewOrderService creates a new OrderService. Orders still CREATED after
// staleAfter are cancelled by CancelStaleOrders.
func NewOrderService(orderRepo repositories.OrderRepository, products ProductClient, payments PaymentClient, publisher events.Publisher, staleAfter time.Duration) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orderRepo:  orderRepo,
		products:   products,
		payments:   payments,
		publisher:  publisher,
		staleAfter: staleAfter,
	}
}

func orderNotFound(id uint64, err error) error {
	return apperror.Wrap(http.StatusNotFound, fmt.Sprintf("Order not found with id %d", id), err)
}

// PlaceOrder reserves stock, records the order and charges it. A failed
// payment leaves the order in PAYMENT_FAILED and still returns its id.
func (s *OrderService) PlaceOrder(ctx context.Context, req dto.OrderRequest) (uint64, error) {
	logger := log.Ctx(ctx)

	if err := s.products.ReduceQuantity(ctx, req.ProductID, req.Quantity); err != nil {
		logger.Warn().Err(err).Uint64("product_id", req.ProductID).Int64("quantity", req.Quantity).Msg("could not reserve stock")
		return 0, err
	}

	order := &models.Order{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Amount:      req.TotalAmount,
		PaymentMode: req.PaymentMode,
		OrderStatus: models.OrderStatusCreated,
		OrderDate:   time.Now(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return 0, apperror.Wrap(http.StatusInternalServerError, "Could not save order", err)
	}
	logger.Info().Uint64("order_id", order.OrderID).Uint64("product_id", order.ProductID).Msg("order created")

	status, eventType := models.OrderStatusPlaced, events.TypeOrderPlaced
	paymentID, err := s.payments.DoPayment(ctx, dto.PaymentRequest{
		OrderID:         order.OrderID,
		Amount:          order.Amount,
		PaymentMode:     order.PaymentMode,
		ReferenceNumber: uuid.NewString(),
	})
	if err != nil {
		logger.Error().Err(err).Uint64("order_id", order.OrderID).Msg("payment failed")
		status, eventType = models.OrderStatusPaymentFailed, events.TypeOrderPaymentFailed
	} else {
		logger.Info().Uint64("order_id", order.OrderID).Uint64("payment_id", paymentID).Msg("payment done")
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.OrderID, models.OrderStatusCreated, status); err != nil {
		return 0, apperror.Wrap(http.StatusInternalServerError, "Could not update order status", err)
	}
	order.OrderStatus = status

	s.publish(ctx, eventType, *order)
	return order.OrderID, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order models.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint64("order_id", order.OrderID).Str("type", eventType).Msg("failed to publish order event")
	}
}

// GetOrderDetails returns the order enriched with product and payment
// details. Enrichment failures leave the corresponding section empty.
func (s *OrderService) GetOrderDetails(ctx context.Context, id uint64) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, orderNotFound(id, err)
		}
		return nil, apperror.Wrap(http.StatusInternalServerError, "Could not load order", err)
	}

	resp := dto.NewOrderResponse(*order)
	logger := log.Ctx(ctx)

	if product, err := s.products.GetProduct(ctx, order.ProductID); err != nil {
		logger.Warn().Err(err).Uint64("order_id", id).Msg("could not fetch product details")
	} else {
		resp.ProductDetails = &dto.ProductDetails{
			ProductID:   product.ProductID,
			ProductName: product.ProductName,
			Price:       product.Price,
			Quantity:    product.Quantity,
		}
	}

	if payment, err := s.payments.GetPaymentDetailsByOrderID(ctx, order.OrderID); err != nil {
		logger.Warn().Err(err).Uint64("order_id", id).Msg("could not fetch payment details")
	} else {
		resp.PaymentDetails = &dto.PaymentDetails{
			PaymentID:     payment.PaymentID,
			PaymentStatus: payment.Status,
			PaymentMode:   payment.PaymentMode,
			Amount:        payment.Amount,
			PaymentDate:   payment.PaymentDate,
		}
	}

	return &resp, nil
}

// ListOrders returns all orders, newest first, without enrichment.
func (s *OrderService) ListOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Could not load orders", err)
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewOrderResponse(o))
	}
	return out, nil
}

// CancelStaleOrders cancels orders that stayed CREATED longer than the
// configured stale period and returns how many were cancelled.
func (s *OrderService) CancelStaleOrders(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	stale, err := s.orderRepo.FindByStatusBefore(ctx, models.OrderStatusCreated, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale orders: %w", err)
	}

	logger := log.Ctx(ctx)
	cancelled := 0
	for _, order := range stale {
		err := s.orderRepo.UpdateStatus(ctx, order.OrderID, models.OrderStatusCreated, models.OrderStatusCancelled)
		if err != nil {
			// ErrNotFound means the order moved on since it was listed.
			if !errors.Is(err, repositories.ErrNotFound) {
				logger.Error().Err(err).Uint64("order_id", order.OrderID).Msg("failed to cancel stale order")
			}
			continue
		}
		order.OrderStatus = models.OrderStatusCancelled
		s.publish(ctx, events.TypeOrderCancelled, order)
		cancelled++
	}

	if cancelled > 0 {
		logger.Info().Int("cancelled", cancelled).Time("cutoff", cutoff).Msg("cancelled stale orders")
	}
	return cancelled, nil
}
