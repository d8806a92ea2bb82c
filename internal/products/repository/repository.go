package repository

import (
	"context"
	"errors"
	"fmt"

	"byabshik_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productNotFoundMessage = "product not found"
	skuTakenMessage        = "sku already exists"
	pgUniqueViolation      = "23505"
)

const productColumns = `id, sku, name, price, stock, created_at, updated_at`

// Repo implements Repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new products repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create inserts a product.
func (r *Repo) Create(ctx context.Context, params CreateProductParams) (Product, error) {
	query := `
		INSERT INTO products (sku, name, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, params.SKU, params.Name, params.Price, params.Stock))
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, apperr.Conflict(skuTakenMessage)
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update changes the given fields of a product.
func (r *Repo) Update(ctx context.Context, params UpdateProductParams) (Product, error) {
	query := `
		UPDATE products
		SET
			sku = COALESCE($2, sku),
			name = COALESCE($3, name),
			price = COALESCE($4, price),
			stock = COALESCE($5, stock),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, params.ID, params.SKU, params.Name, params.Price, params.Stock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		if isUniqueViolation(err) {
			return Product{}, apperr.Conflict(skuTakenMessage)
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete deletes a product. Placed orders keep their captured lines.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMessage)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// List returns products ordered by name, optionally filtered by name or sku.
func (r *Repo) List(ctx context.Context, search string) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%'
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
