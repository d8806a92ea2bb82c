// Package adapters contains adapters that bridge different bounded contexts.
// These adapters implement interfaces defined by consuming domains while
// wrapping services from providing domains.
package adapters

import (
	"context"

	"byabshik_backend/internal/leads/contacts"
	leadsvc "byabshik_backend/internal/leads/service"
	orderrepo "byabshik_backend/internal/orders/repository"
)

// OrderContactSource is the orders side the adapter reads.
type OrderContactSource interface {
	ContactRows(ctx context.Context) ([]orderrepo.ContactRow, error)
}

// OrderContacts feeds order rows into the lead contact projection.
type OrderContacts struct {
	orders OrderContactSource
}

// NewOrderContacts creates a new order history adapter.
func NewOrderContacts(orders OrderContactSource) *OrderContacts {
	return &OrderContacts{orders: orders}
}

// ContactOrders returns every order as a projection record.
func (a *OrderContacts) ContactOrders(ctx context.Context) ([]contacts.OrderRecord, error) {
	rows, err := a.orders.ContactRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]contacts.OrderRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, contacts.OrderRecord{
			Phone:        r.Phone,
			CustomerName: r.CustomerName,
			Address:      r.Address,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, nil
}

// Compile-time check that OrderContacts implements leads/service.OrderHistory.
var _ leadsvc.OrderHistory = (*OrderContacts)(nil)
