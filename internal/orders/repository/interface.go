package repository

import (
	"context"
	"errors"
	"time"

	"byabshik_backend/internal/orders/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicateOrderID is returned when a generated order id is taken.
var ErrDuplicateOrderID = errors.New("order id already exists")

// ProductSnapshot is a product row locked for the duration of order creation.
type ProductSnapshot struct {
	ID    uuid.UUID
	SKU   string
	Name  string
	Price decimal.Decimal
	Stock int
}

// BuildFunc assembles the order from the locked products. Returning an
// error rolls the transaction back.
type BuildFunc func(products map[uuid.UUID]ProductSnapshot) (domain.Order, error)

// ListParams filters the order list.
type ListParams struct {
	Search      string
	Status      *domain.Status
	Region      *domain.Region
	ModeratorID *uuid.UUID
}

// ContactRow is the slice of an order the contact projection needs.
type ContactRow struct {
	Phone        string
	CustomerName string
	Address      string
	CreatedAt    time.Time
}

// StatusChange records one status transition.
type StatusChange struct {
	OrderID string
	Old     domain.Status
	New     domain.Status
}

// Repository is the persistence contract for orders.
type Repository interface {
	// Create locks the referenced products, builds the order, decrements
	// stock, and inserts the order in one transaction.
	Create(ctx context.Context, productIDs []uuid.UUID, build BuildFunc) (domain.Order, error)
	GetByID(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, params ListParams) ([]domain.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Order, error)
	ListContactRows(ctx context.Context) ([]ContactRow, error)

	UpdateStatus(ctx context.Context, id string, status domain.Status) (StatusChange, error)
	UpdateStatusMany(ctx context.Context, ids []string, status domain.Status) ([]StatusChange, error)

	// RecordDispatch stores a consignment only if the order has none yet.
	// It reports false when another writer got there first.
	RecordDispatch(ctx context.Context, id, consignmentID, courierStatus string, simulated bool) (bool, error)
	RecordCourierStatus(ctx context.Context, id, courierStatus string, status domain.Status) (StatusChange, error)
	FindByConsignment(ctx context.Context, consignmentID string) (domain.Order, error)
	// ListInFlight returns dispatched orders that are not yet terminal.
	ListInFlight(ctx context.Context) ([]domain.Order, error)
}
