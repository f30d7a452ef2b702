package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func orderBy(sort Sort) clause.OrderByColumn {
	column := sort.Column
	if column == "" {
		column = "product_id"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Desc}
}

func (r *GORMProductRepository) find(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where(query, args...).Order("product_id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

// GetAll retrieves all products in the requested order.
func (r *GORMProductRepository) GetAll(ctx context.Context, sort Sort) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order(orderBy(sort)).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetPage retrieves page offset (zero based) of size limit along with the
// total number of products.
func (r *GORMProductRepository) GetPage(ctx context.Context, offset, limit int, sort Sort) ([]models.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Order(orderBy(sort)).
		Offset(offset * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get product page %d: %w", offset, err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindByNameContains matches products whose name contains name, ignoring case.
// Wildcards in name match literally.
func (r *GORMProductRepository) FindByNameContains(ctx context.Context, name string) ([]models.Product, error) {
	return r.find(ctx, `LOWER(product_name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
}

// CountByNameEquals counts products named name, ignoring case.
func (r *GORMProductRepository) CountByNameEquals(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(product_name) = ?", strings.ToLower(name)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products named %q: %w", name, err)
	}
	return n, nil
}

func (r *GORMProductRepository) FindByType(ctx context.Context, productType string) ([]models.Product, error) {
	return r.find(ctx, "product_type = ?", productType)
}

// FindByPriceBetween returns products priced within [minPrice, maxPrice].
func (r *GORMProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return r.find(ctx, "price BETWEEN ? AND ?", minPrice, maxPrice)
}

func (r *GORMProductRepository) FindByPriceGreaterThanEqual(ctx context.Context, price float64) ([]models.Product, error) {
	return r.find(ctx, "price >= ?", price)
}

func (r *GORMProductRepository) FindByPriceLessThan(ctx context.Context, price float64) ([]models.Product, error) {
	return r.find(ctx, "price < ?", price)
}

// Create creates a new product; the generated ID is written back.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// CreateAll inserts products in one batch; generated IDs are written back.
func (r *GORMProductRepository) CreateAll(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("failed to create %d products: %w", len(products), err)
	}
	return nil
}

// Update replaces every editable field of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{ProductID: product.ProductID}).
		Select("product_name", "product_description", "product_type", "price", "quantity", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ProductID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "product_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMProductRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}

func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *GORMProductRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return n > 0, nil
}

// TotalCost returns the sum of price * quantity over all products.
func (r *GORMProductRepository) TotalCost(ctx context.Context) (float64, error) {
	var total float64
	row := r.db.WithContext(ctx).Model(&models.Product{}).Select("COALESCE(SUM(price * quantity), 0.0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to compute total cost: %w", err)
	}
	return total, nil
}

// ReduceQuantity atomically subtracts quantity from a product's stock. The
// stock never goes negative.
func (r *GORMProductRepository) ReduceQuantity(ctx context.Context, id uint64, quantity int64) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("product_id = ? AND quantity >= ?", id, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reduce quantity of product %d: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	exists, err := r.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("product with ID %d: %w", id, ErrInsufficientQuantity)
}
