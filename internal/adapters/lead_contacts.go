package adapters

import (
	"context"

	leaddomain "byabshik_backend/internal/leads/domain"
	ordersvc "byabshik_backend/internal/orders/service"
)

// LeadSource finds the newest lead for a phone number.
type LeadSource interface {
	LatestByPhone(ctx context.Context, phone string) (*leaddomain.Lead, error)
}

// LeadContacts lets the order form prefill from a matching lead.
type LeadContacts struct {
	leads LeadSource
}

// NewLeadContacts creates a new lead lookup adapter.
func NewLeadContacts(leads LeadSource) *LeadContacts {
	return &LeadContacts{leads: leads}
}

// LatestLeadByPhone returns the lead's contact details, or nil when no lead matches.
func (a *LeadContacts) LatestLeadByPhone(ctx context.Context, phone string) (*ordersvc.LeadContact, error) {
	lead, err := a.leads.LatestByPhone(ctx, phone)
	if err != nil || lead == nil {
		return nil, err
	}
	return &ordersvc.LeadContact{Name: lead.CustomerName, Address: lead.Address}, nil
}

// Compile-time check that LeadContacts implements orders/service.LeadLookup.
var _ ordersvc.LeadLookup = (*LeadContacts)(nil)
