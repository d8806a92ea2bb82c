package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with its on-hand stock.
type Product struct {
	ID        uuid.UUID
	SKU       string
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateProductParams contains data for creating a product.
type CreateProductParams struct {
	SKU   string
	Name  string
	Price decimal.Decimal
	Stock int
}

// UpdateProductParams contains data for updating a product. Nil fields are kept.
type UpdateProductParams struct {
	ID    uuid.UUID
	SKU   *string
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

// Repository defines product storage operations.
type Repository interface {
	Create(ctx context.Context, params CreateProductParams) (Product, error)
	Update(ctx context.Context, params UpdateProductParams) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	List(ctx context.Context, search string) ([]Product, error)
}
