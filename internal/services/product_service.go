package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Client-facing messages shared with the handlers.
const (
	MsgProductNotFound       = "Product is not found"
	MsgInsufficientQuantity  = "Product does not have sufficient quantity."
	MsgInvalidSortField      = "Sort field is invalid."
	MsgPageInvalid           = "Page request is invalid."
	MsgDeleteProduct         = "Delete product successful"
	MsgDeleteListProducts    = "Delete list product successful"
	MsgDeleteAllProducts     = "Delete all products successful"
	msgProductStoreFailure   = "Could not access product store"
	defaultSortDirectionDesc = "desc"
)

// sortableColumns maps public field names to product columns.
var sortableColumns = map[string]string{
	"productId":          "product_id",
	"productName":        "product_name",
	"productDescription": "product_description",
	"productType":        "product_type",
	"price":              "price",
	"quantity":           "quantity",
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ParseSort turns a public field name and direction into a repository sort.
// An empty field keeps primary key order; direction is ascending unless it
// equals "desc" in any case.
func ParseSort(field, direction string) (repositories.Sort, error) {
	desc := strings.EqualFold(direction, defaultSortDirectionDesc)
	if field == "" {
		return repositories.Sort{Desc: desc}, nil
	}
	column, ok := sortableColumns[field]
	if !ok {
		return repositories.Sort{}, apperror.BadRequest(MsgInvalidSortField)
	}
	return repositories.Sort{Column: column, Desc: desc}, nil
}

func storeError(err error) error {
	return apperror.Wrap(http.StatusInternalServerError, msgProductStoreFailure, err)
}

// GetProducts lists all products, optionally sorted.
func (s *ProductService) GetProducts(ctx context.Context, field, direction string) ([]dto.ProductResponse, error) {
	sort, err := ParseSort(field, direction)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.GetAll(ctx, sort)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Int("count", len(products)).Str("sort", field).Bool("desc", sort.Desc).Msg("listed products")
	return dto.NewProductResponses(products), nil
}

// MaxPageOffset is the largest page index whose rows can be addressed with
// pages of size limit.
func MaxPageOffset(limit int) int {
	if limit < 1 {
		return 0
	}
	return math.MaxInt/limit - 1
}

// GetProductsWithPagination returns page offset (zero based) of size limit.
func (s *ProductService) GetProductsWithPagination(ctx context.Context, offset, limit int, field, direction string) (*dto.ProductPage, error) {
	if limit < 1 || offset < 0 || offset > MaxPageOffset(limit) {
		return nil, apperror.BadRequest(MsgPageInvalid)
	}
	sort, err := ParseSort(field, direction)
	if err != nil {
		return nil, err
	}
	products, total, err := s.repo.GetPage(ctx, offset, limit, sort)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Int("from", offset*limit+1).Int("to", (offset+1)*limit).Int64("total", total).Msg("listed product page")
	return &dto.ProductPage{
		Content:       dto.NewProductResponses(products),
		Page:          offset,
		Size:          limit,
		TotalElements: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// GetProductByID returns one product. A missing product is a bad request.
func (s *ProductService) GetProductByID(ctx context.Context, id uint64) (*dto.ProductResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Wrap(http.StatusBadRequest, MsgProductNotFound, err)
		}
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Uint64("product_id", id).Msg("got product")
	resp := dto.NewProductResponse(*product)
	return &resp, nil
}

func (s *ProductService) GetProductsByName(ctx context.Context, name string) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByNameContains(ctx, name)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Str("name", name).Int("count", len(products)).Msg("listed products by name")
	return dto.NewProductResponses(products), nil
}

func (s *ProductService) GetProductsByType(ctx context.Context, productType string) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByType(ctx, productType)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Str("type", productType).Int("count", len(products)).Msg("listed products by type")
	return dto.NewProductResponses(products), nil
}

func (s *ProductService) GetProductsByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByPriceBetween(ctx, minPrice, maxPrice)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Float64("min", minPrice).Float64("max", maxPrice).Int("count", len(products)).Msg("listed products by price range")
	return dto.NewProductResponses(products), nil
}

func (s *ProductService) GetProductsByPriceGreaterThan(ctx context.Context, price float64) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByPriceGreaterThanEqual(ctx, price)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Float64("price", price).Int("count", len(products)).Msg("listed products priced at or above")
	return dto.NewProductResponses(products), nil
}

func (s *ProductService) GetProductsByPriceLessThan(ctx context.Context, price float64) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByPriceLessThan(ctx, price)
	if err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Float64("price", price).Int("count", len(products)).Msg("listed products priced below")
	return dto.NewProductResponses(products), nil
}

// AddProduct stores a new product and returns its generated ID.
func (s *ProductService) AddProduct(ctx context.Context, req dto.ProductRequest) (uint64, error) {
	product := req.ToModel()
	if err := s.repo.Create(ctx, &product); err != nil {
		return 0, storeError(err)
	}
	log.Ctx(ctx).Info().Uint64("product_id", product.ProductID).Str("name", product.ProductName).Msg("product created")
	return product.ProductID, nil
}

// AddProducts stores all products in one batch.
func (s *ProductService) AddProducts(ctx context.Context, reqs []dto.ProductRequest) ([]dto.ProductResponse, error) {
	if len(reqs) == 0 {
		return []dto.ProductResponse{}, nil
	}
	products := make([]models.Product, 0, len(reqs))
	for _, r := range reqs {
		products = append(products, r.ToModel())
	}
	if err := s.repo.CreateAll(ctx, products); err != nil {
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Int("count", len(products)).Msg("products created")
	return dto.NewProductResponses(products), nil
}

// EditProduct replaces all fields of product id with req.
func (s *ProductService) EditProduct(ctx context.Context, req dto.ProductRequest, id uint64) (*dto.ProductResponse, error) {
	product := req.ToModel()
	product.ProductID = id
	if err := s.repo.Update(ctx, &product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Wrap(http.StatusBadRequest, MsgProductNotFound, err)
		}
		return nil, storeError(err)
	}
	log.Ctx(ctx).Info().Uint64("product_id", id).Msg("product edited")
	resp := dto.NewProductResponse(product)
	return &resp, nil
}

func (s *ProductService) DeleteProductByID(ctx context.Context, id uint64) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperror.Wrap(http.StatusBadRequest, MsgProductNotFound, err)
		}
		return "", storeError(err)
	}
	log.Ctx(ctx).Info().Uint64("product_id", id).Msg("product deleted")
	return MsgDeleteProduct, nil
}

// DeleteListProducts deletes ids in order and stops at the first failure.
func (s *ProductService) DeleteListProducts(ctx context.Context, ids []uint64) (string, error) {
	for _, id := range ids {
		if _, err := s.DeleteProductByID(ctx, id); err != nil {
			return "", err
		}
	}
	return MsgDeleteListProducts, nil
}

func (s *ProductService) DeleteAllProducts(ctx context.Context) (string, error) {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return "", storeError(err)
	}
	log.Ctx(ctx).Info().Msg("all products deleted")
	return MsgDeleteAllProducts, nil
}

func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// Total returns the stock value of the catalog, sum of price * quantity.
func (s *ProductService) Total(ctx context.Context) (float64, error) {
	total, err := s.repo.TotalCost(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	log.Ctx(ctx).Info().Float64("total", total).Msg("computed total cost")
	return total, nil
}

func (s *ProductService) CheckProductByID(ctx context.Context, id uint64) (bool, error) {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return false, storeError(err)
	}
	return exists, nil
}

func (s *ProductService) CheckProductByName(ctx context.Context, name string) (bool, error) {
	n, err := s.repo.CountByNameEquals(ctx, name)
	if err != nil {
		return false, storeError(err)
	}
	return n > 0, nil
}

// ReduceQuantity takes quantity units of product id out of stock.
func (s *ProductService) ReduceQuantity(ctx context.Context, id uint64, quantity int64) error {
	err := s.repo.ReduceQuantity(ctx, id, quantity)
	switch {
	case err == nil:
		log.Ctx(ctx).Info().Uint64("product_id", id).Int64("quantity", quantity).Msg("product quantity reduced")
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.Wrap(http.StatusBadRequest, MsgProductNotFound, err)
	case errors.Is(err, repositories.ErrInsufficientQuantity):
		return apperror.Wrap(http.StatusBadRequest, MsgInsufficientQuantity, err)
	default:
		return storeError(fmt.Errorf("reduce quantity: %w", err))
	}
}
