package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockOrderRepository) FindByStatusBefore(ctx context.Context, status string, t time.Time) ([]models.Order, error) {
	args := m.Called(ctx, status, t)
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockProductClient struct {
	mock.Mock
}

func (m *MockProductClient) ReduceQuantity(ctx context.Context, id uint64, quantity int64) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockProductClient) GetProduct(ctx context.Context, id uint64) (*dto.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductResponse), args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) DoPayment(ctx context.Context, req dto.PaymentRequest) (uint64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockPaymentClient) GetPaymentDetailsByOrderID(ctx context.Context, orderID uint64) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaymentResponse), args.Error(1)
}

type recordingPublisher struct {
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type orderFixture struct {
	repo      *MockOrderRepository
	products  *MockProductClient
	payments  *MockPaymentClient
	publisher *recordingPublisher
	service   *services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:      new(MockOrderRepository),
		products:  new(MockProductClient),
		payments:  new(MockPaymentClient),
		publisher: &recordingPublisher{},
	}
	f.service = services.NewOrderService(f.repo, f.products, f.payments, f.publisher, 15*time.Minute)
	return f
}

func (f *orderFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.products.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

var placeOrderRequest = dto.OrderRequest{ProductID: 3, TotalAmount: 2199.98, Quantity: 2, PaymentMode: dto.PaymentModePaypal}

func expectCreate(f *orderFixture, ctx context.Context, id uint64) {
	f.repo.On("Create", ctx, mock.MatchedBy(func(o *models.Order) bool {
		return o.ProductID == 3 && o.Quantity == 2 && o.OrderStatus == models.OrderStatusCreated
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Order).OrderID = id
	}).Return(nil).Once()
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.products.On("ReduceQuantity", ctx, uint64(3), int64(2)).Return(nil).Once()
	expectCreate(f, ctx, 11)
	f.payments.On("DoPayment", ctx, mock.MatchedBy(func(r dto.PaymentRequest) bool {
		return r.OrderID == 11 && r.Amount == 2199.98 && r.PaymentMode == dto.PaymentModePaypal && r.ReferenceNumber != ""
	})).Return(uint64(41), nil).Once()
	f.repo.On("UpdateStatus", ctx, uint64(11), models.OrderStatusCreated, models.OrderStatusPlaced).Return(nil).Once()

	id, err := f.service.PlaceOrder(ctx, placeOrderRequest)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	f.assertExpectations(t)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeOrderPlaced, f.publisher.events[0].Type)
	assert.Equal(t, models.OrderStatusPlaced, f.publisher.events[0].OrderStatus)
}

func TestOrderService_PlaceOrder_PaymentFailure(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.publisher.err = errors.New("broker down")

	f.products.On("ReduceQuantity", ctx, uint64(3), int64(2)).Return(nil).Once()
	expectCreate(f, ctx, 12)
	f.payments.On("DoPayment", ctx, mock.AnythingOfType("dto.PaymentRequest")).
		Return(uint64(0), apperror.BadGateway("payment service failed")).Once()
	f.repo.On("UpdateStatus", ctx, uint64(12), models.OrderStatusCreated, models.OrderStatusPaymentFailed).Return(nil).Once()

	// Neither the payment failure nor the publish failure reach the caller.
	id, err := f.service.PlaceOrder(ctx, placeOrderRequest)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	f.assertExpectations(t)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeOrderPaymentFailed, f.publisher.events[0].Type)
}

func TestOrderService_PlaceOrder_StockRejected(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.products.On("ReduceQuantity", ctx, uint64(3), int64(2)).
		Return(apperror.BadRequest("Product does not have sufficient quantity.")).Once()

	_, err := f.service.PlaceOrder(ctx, placeOrderRequest)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	assert.Equal(t, "Product does not have sufficient quantity.", apperror.Message(err))
	f.assertExpectations(t)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestOrderService_GetOrderDetails(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := &models.Order{OrderID: 11, ProductID: 3, Quantity: 2, Amount: 2199.98, PaymentMode: dto.PaymentModeCash, OrderStatus: models.OrderStatusPlaced, OrderDate: time.Now()}
	f.repo.On("GetByID", ctx, uint64(11)).Return(order, nil).Once()
	f.products.On("GetProduct", ctx, uint64(3)).
		Return(&dto.ProductResponse{ProductID: 3, ProductName: "Pixel 5", Price: 1099.99, Quantity: 2}, nil).Once()
	f.payments.On("GetPaymentDetailsByOrderID", ctx, uint64(11)).
		Return(&dto.PaymentResponse{PaymentID: 41, Status: "SUCCESS", PaymentMode: dto.PaymentModeCash, Amount: 2199.98}, nil).Once()

	details, err := f.service.GetOrderDetails(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPlaced, details.OrderStatus)
	require.NotNil(t, details.ProductDetails)
	assert.Equal(t, "Pixel 5", details.ProductDetails.ProductName)
	require.NotNil(t, details.PaymentDetails)
	assert.Equal(t, "SUCCESS", details.PaymentDetails.PaymentStatus)
	f.assertExpectations(t)
}

func TestOrderService_GetOrderDetails_EnrichmentFailuresAreTolerated(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.repo.On("GetByID", ctx, uint64(11)).Return(&models.Order{OrderID: 11, ProductID: 3}, nil).Once()
	f.products.On("GetProduct", ctx, uint64(3)).Return(nil, apperror.ServiceUnavailable("product service is unavailable")).Once()
	f.payments.On("GetPaymentDetailsByOrderID", ctx, uint64(11)).Return(nil, apperror.NotFound("no payment")).Once()

	details, err := f.service.GetOrderDetails(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, details.ProductDetails)
	assert.Nil(t, details.PaymentDetails)
}

func TestOrderService_GetOrderDetails_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.repo.On("GetByID", ctx, uint64(7)).Return(nil, fmt.Errorf("order with ID 7: %w", repositories.ErrNotFound)).Once()

	_, err := f.service.GetOrderDetails(ctx, 7)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.StatusCode(err))
	assert.Equal(t, "Order not found with id 7", apperror.Message(err))
}

func TestOrderService_CancelStaleOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	stale := []models.Order{
		{OrderID: 1, OrderStatus: models.OrderStatusCreated},
		{OrderID: 2, OrderStatus: models.OrderStatusCreated},
		{OrderID: 3, OrderStatus: models.OrderStatusCreated},
	}
	f.repo.On("FindByStatusBefore", ctx, models.OrderStatusCreated, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 15*time.Minute
	})).Return(stale, nil).Once()
	f.repo.On("UpdateStatus", ctx, uint64(1), models.OrderStatusCreated, models.OrderStatusCancelled).Return(nil).Once()
	f.repo.On("UpdateStatus", ctx, uint64(2), models.OrderStatusCreated, models.OrderStatusCancelled).
		Return(fmt.Errorf("order with ID 2: %w", repositories.ErrNotFound)).Once()
	f.repo.On("UpdateStatus", ctx, uint64(3), models.OrderStatusCreated, models.OrderStatusCancelled).Return(nil).Once()

	n, err := f.service.CancelStaleOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.assertExpectations(t)

	require.Len(t, f.publisher.events, 2)
	for _, e := range f.publisher.events {
		assert.Equal(t, events.TypeOrderCancelled, e.Type)
		assert.Equal(t, models.OrderStatusCancelled, e.OrderStatus)
	}
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.repo.On("GetAll", ctx).Return([]models.Order{{OrderID: 2}, {OrderID: 1}}, nil).Once()

	orders, err := f.service.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(2), orders[0].OrderID)
}
