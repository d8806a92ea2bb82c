package service

import (
	"context"
	"strings"

	"byabshik_backend/internal/products/repository"
	"byabshik_backend/internal/products/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides business logic for products.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new products service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns the catalog.
func (s *Service) List(ctx context.Context, req transport.ListProductsRequest) (transport.ProductListResponse, error) {
	items, err := s.repo.List(ctx, strings.TrimSpace(req.Search))
	if err != nil {
		return transport.ProductListResponse{}, err
	}
	out := make([]transport.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	return transport.ProductListResponse{Items: out, Total: len(out)}, nil
}

// GetByID retrieves a product by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ProductResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return toProductResponse(p), nil
}

// Create adds a product.
func (s *Service) Create(ctx context.Context, req transport.CreateProductRequest) (transport.ProductResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)
	if sku == "" || name == "" {
		return transport.ProductResponse{}, apperr.Validation("sku and name are required")
	}

	p, err := s.repo.Create(ctx, repository.CreateProductParams{
		SKU:   sku,
		Name:  name,
		Price: toMoney(req.Price),
		Stock: req.Stock,
	})
	if err != nil {
		return transport.ProductResponse{}, err
	}

	s.log.Info("product created", "id", p.ID, "sku", p.SKU)
	return toProductResponse(p), nil
}

// Update changes a product. Existing orders keep the price they captured.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (transport.ProductResponse, error) {
	params := repository.UpdateProductParams{ID: id, Stock: req.Stock}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return transport.ProductResponse{}, apperr.Validation("sku cannot be empty")
		}
		params.SKU = &sku
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return transport.ProductResponse{}, apperr.Validation("name cannot be empty")
		}
		params.Name = &name
	}
	if req.Price != nil {
		price := toMoney(*req.Price)
		params.Price = &price
	}

	p, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.ProductResponse{}, err
	}

	s.log.Info("product updated", "id", p.ID, "sku", p.SKU)
	return toProductResponse(p), nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "id", id)
	return nil
}

func toMoney(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func toProductResponse(p repository.Product) transport.ProductResponse {
	return transport.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
