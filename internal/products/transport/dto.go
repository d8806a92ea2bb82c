package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateProductRequest struct {
	SKU   string  `json:"sku" validate:"required,min=1,max=64"`
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Price float64 `json:"price" validate:"min=0"`
	Stock int     `json:"stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	SKU   *string  `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Name  *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Stock *int     `json:"stock,omitempty" validate:"omitempty,min=0"`
}

type ListProductsRequest struct {
	Search string `form:"search" validate:"max=100"`
}

type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
