package clients

import (
	"context"
	"strconv"
	"time"

	"storefront/internal/dto"

	"github.com/go-resty/resty/v2"
)

// ProductClient talks to the product service.
type ProductClient struct {
	*downstream
}

func NewProductClient(baseURL string, timeout time.Duration, opts ...Option) *ProductClient {
	return &ProductClient{downstream: newDownstream("product service", baseURL, timeout, opts...)}
}

// ReduceQuantity takes quantity units of product id out of stock.
func (c *ProductClient) ReduceQuantity(ctx context.Context, id uint64, quantity int64) error {
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetPathParam("id", strconv.FormatUint(id, 10)).
			SetQueryParam("quantity", strconv.FormatInt(quantity, 10)).
			Put("/api/product/reduceQuantity/{id}")
	})
	return err
}

func (c *ProductClient) GetProduct(ctx context.Context, id uint64) (*dto.ProductResponse, error) {
	var product dto.ProductResponse
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetPathParam("id", strconv.FormatUint(id, 10)).
			SetResult(&product).
			Get("/api/product/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}
