package services_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) products(args mock.Arguments) ([]models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context, sort repositories.Sort) ([]models.Product, error) {
	return m.products(m.Called(ctx, sort))
}

func (m *MockProductRepository) GetPage(ctx context.Context, offset, limit int, sort repositories.Sort) ([]models.Product, int64, error) {
	args := m.Called(ctx, offset, limit, sort)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNameContains(ctx context.Context, name string) ([]models.Product, error) {
	return m.products(m.Called(ctx, name))
}

func (m *MockProductRepository) CountByNameEquals(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindByType(ctx context.Context, productType string) ([]models.Product, error) {
	return m.products(m.Called(ctx, productType))
}

func (m *MockProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return m.products(m.Called(ctx, minPrice, maxPrice))
}

func (m *MockProductRepository) FindByPriceGreaterThanEqual(ctx context.Context, price float64) ([]models.Product, error) {
	return m.products(m.Called(ctx, price))
}

func (m *MockProductRepository) FindByPriceLessThan(ctx context.Context, price float64) ([]models.Product, error) {
	return m.products(m.Called(ctx, price))
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) CreateAll(ctx context.Context, products []models.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) TotalCost(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockProductRepository) ReduceQuantity(ctx context.Context, id uint64, quantity int64) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func TestParseSort(t *testing.T) {
	sort, err := services.ParseSort("price", "DESC")
	require.NoError(t, err)
	assert.Equal(t, repositories.Sort{Column: "price", Desc: true}, sort)

	sort, err = services.ParseSort("productName", "")
	require.NoError(t, err)
	assert.Equal(t, repositories.Sort{Column: "product_name"}, sort)

	sort, err = services.ParseSort("", "asc")
	require.NoError(t, err)
	assert.Equal(t, repositories.Sort{}, sort)

	_, err = services.ParseSort("price; DROP TABLE product", "asc")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	assert.Equal(t, services.MsgInvalidSortField, apperror.Message(err))
}

func TestProductService_GetProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	stored := []models.Product{
		{ProductID: 1, ProductName: "iPhone X", ProductType: "phone", Price: 1499.99, Quantity: 6},
		{ProductID: 2, ProductName: "Galaxy S10", ProductType: "phone", Price: 1299.99, Quantity: 3},
	}
	mockRepo.On("GetAll", ctx, repositories.Sort{Column: "price", Desc: true}).Return(stored, nil).Once()

	products, err := service.GetProducts(ctx, "price", "desc")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, uint64(1), products[0].ProductID)
	assert.Equal(t, "Galaxy S10", products[1].ProductName)
	mockRepo.AssertExpectations(t)

	// Unknown sort fields never reach the repository.
	_, err = service.GetProducts(ctx, "color", "asc")
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsWithPagination(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetPage", ctx, 1, 4, repositories.Sort{}).
		Return([]models.Product{{ProductID: 5}, {ProductID: 6}}, int64(6), nil).Once()

	page, err := service.GetProductsWithPagination(ctx, 1, 4, "", "")
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.Size)
	assert.Equal(t, int64(6), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	// Offsets whose first row overflows int never reach the store.
	_, err = service.GetProductsWithPagination(ctx, math.MaxInt/4, 4, "", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	assert.Equal(t, services.MsgPageInvalid, apperror.Message(err))
	mockRepo.AssertExpectations(t)
}

func TestMaxPageOffset(t *testing.T) {
	assert.Equal(t, math.MaxInt/4-1, services.MaxPageOffset(4))
	assert.Equal(t, math.MaxInt-1, services.MaxPageOffset(1))
	assert.Equal(t, 0, services.MaxPageOffset(0))
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", ctx, uint64(3)).
		Return(&models.Product{ProductID: 3, ProductName: "Pixel 5", Price: 1099.99, Quantity: 4}, nil).Once()
	product, err := service.GetProductByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 5", product.ProductName)

	// Missing products are reported as bad requests.
	mockRepo.On("GetByID", ctx, uint64(99)).Return(nil, repositories.ErrNotFound).Once()
	_, err = service.GetProductByID(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	assert.Equal(t, services.MsgProductNotFound, apperror.Message(err))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mockRepo.On("GetByID", ctx, uint64(7)).Return(nil, errors.New("connection reset")).Once()
	_, err = service.GetProductByID(ctx, 7)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_AddProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	req := dto.ProductRequest{Name: "Pixel 5", Description: "Manufactured by Google", Type: "phone", Price: 1099.99, Quantity: 4}
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*models.Product)
			assert.Equal(t, "Pixel 5", p.ProductName)
			p.ProductID = 3
		}).
		Return(nil).Once()

	id, err := service.AddProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AddProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	empty, err := service.AddProducts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	reqs := []dto.ProductRequest{
		{Name: "Dell XPS 15", Type: "laptop", Price: 1799.99, Quantity: 6},
		{Name: "HP Envy 13", Type: "laptop", Price: 1299.99, Quantity: 2},
	}
	mockRepo.On("CreateAll", ctx, mock.AnythingOfType("[]models.Product")).Return(errors.New("disk full")).Once()

	_, err = service.AddProducts(ctx, reqs)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_EditProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	req := dto.ProductRequest{Name: "Pixel 6", Type: "phone", Price: 899, Quantity: 10}
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool { return p.ProductID == 3 })).Return(nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool { return p.ProductID == 42 })).Return(repositories.ErrNotFound).Once()

	updated, err := service.EditProduct(ctx, req, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), updated.ProductID)
	assert.Equal(t, "Pixel 6", updated.ProductName)

	_, err = service.EditProduct(ctx, req, 42)
	assert.Equal(t, services.MsgProductNotFound, apperror.Message(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteListProducts_StopsAtFirstMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Delete", ctx, uint64(1)).Return(nil).Once()
	mockRepo.On("Delete", ctx, uint64(9)).Return(repositories.ErrNotFound).Once()

	_, err := service.DeleteListProducts(ctx, []uint64{1, 9, 2})
	require.Error(t, err)
	assert.Equal(t, services.MsgProductNotFound, apperror.Message(err))
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Delete", ctx, uint64(2))

	mockRepo.On("Delete", ctx, uint64(2)).Return(nil).Once()
	msg, err := service.DeleteListProducts(ctx, []uint64{2})
	require.NoError(t, err)
	assert.Equal(t, services.MsgDeleteListProducts, msg)
}

func TestProductService_CheckProductByName(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("CountByNameEquals", ctx, "Pixel 5").Return(int64(1), nil).Once()
	mockRepo.On("CountByNameEquals", ctx, "Pixel").Return(int64(0), nil).Once()

	exists, err := service.CheckProductByName(ctx, "Pixel 5")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.CheckProductByName(ctx, "Pixel")
	require.NoError(t, err)
	assert.False(t, exists)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ReduceQuantity(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("ReduceQuantity", ctx, uint64(2), int64(1)).Return(nil).Once()
	mockRepo.On("ReduceQuantity", ctx, uint64(2), int64(50)).Return(repositories.ErrInsufficientQuantity).Once()
	mockRepo.On("ReduceQuantity", ctx, uint64(77), int64(1)).Return(repositories.ErrNotFound).Once()

	assert.NoError(t, service.ReduceQuantity(ctx, 2, 1))

	err := service.ReduceQuantity(ctx, 2, 50)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
	assert.Equal(t, services.MsgInsufficientQuantity, apperror.Message(err))

	err = service.ReduceQuantity(ctx, 77, 1)
	assert.Equal(t, services.MsgProductNotFound, apperror.Message(err))
	mockRepo.AssertExpectations(t)
}
