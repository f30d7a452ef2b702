package dto

import "storefront/internal/models"

// ProductRequest is the body accepted by the create and edit endpoints.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Type        string  `json:"type" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int64   `json:"quantity" validate:"gte=0"`
}

// ToModel copies the request into a new, unsaved product.
func (r ProductRequest) ToModel() models.Product {
	return models.Product{
		ProductName:        r.Name,
		ProductDescription: r.Description,
		ProductType:        r.Type,
		Price:              r.Price,
		Quantity:           r.Quantity,
	}
}

// ProductResponse is the public shape of a product.
type ProductResponse struct {
	ProductID          uint64  `json:"productId"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductType        string  `json:"productType"`
	Price              float64 `json:"price"`
	Quantity           int64   `json:"quantity"`
}

func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ProductID:          p.ProductID,
		ProductName:        p.ProductName,
		ProductDescription: p.ProductDescription,
		ProductType:        p.ProductType,
		Price:              p.Price,
		Quantity:           p.Quantity,
	}
}

func NewProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}

// ProductPage is one page of a paginated product listing.
type ProductPage struct {
	Content       []ProductResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}
