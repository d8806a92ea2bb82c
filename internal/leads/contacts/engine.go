// Package contacts projects leads and order history into one contact per
// customer phone number and plans bulk lead assignments over that projection.
package contacts

import (
	"math"
	"slices"
	"strings"
	"time"

	"byabshik_backend/internal/leads/domain"
	"byabshik_backend/platform/phone"

	"github.com/google/uuid"
)

// Filter values accepted in Criteria.Status besides the lead statuses.
const (
	FilterAll        = "all"
	FilterUnassigned = "unassigned"
)

// OrderRecord is the part of an order the projection reads.
type OrderRecord struct {
	Phone        string
	CustomerName string
	Address      string
	CreatedAt    time.Time
}

// Contact is one customer, keyed by normalized phone number.
// CurrentStatus is nil when no lead exists for the phone.
type Contact struct {
	Phone          string
	Name           string
	Address        string
	LeadID         *uuid.UUID
	LastCallDate   *time.Time
	DaysSinceCall  *int
	LastOrderDate  *time.Time
	DaysSinceOrder *int
	TotalOrders    int
	CurrentStatus  *domain.Status
	ModeratorID    *uuid.UUID
}

// Unassigned reports whether no moderator holds the contact.
func (c Contact) Unassigned() bool {
	return c.ModeratorID == nil
}

// lastActivity is the later of the last order and last call.
func (c Contact) lastActivity() (time.Time, bool) {
	switch {
	case c.LastOrderDate != nil && c.LastCallDate != nil:
		if c.LastOrderDate.After(*c.LastCallDate) {
			return *c.LastOrderDate, true
		}
		return *c.LastCallDate, true
	case c.LastOrderDate != nil:
		return *c.LastOrderDate, true
	case c.LastCallDate != nil:
		return *c.LastCallDate, true
	}
	return time.Time{}, false
}

// Criteria narrows a projection. All set predicates must hold.
type Criteria struct {
	Search            string
	Status            string
	MinDaysSinceCall  *int
	MinDaysSinceOrder *int
}

// Engine builds contact projections against an injected clock.
type Engine struct {
	now func() time.Time
}

// New creates an Engine. A nil clock uses time.Now.
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Reconcile merges leads and orders into contacts.
//
// Leads must be supplied newest first: for a phone seen more than once the
// first lead processed owns moderator, status and lead reference, and later
// ones are ignored.
// Orders may arrive in any order; the chronologically latest one sets the
// last order date. Records whose phone does not normalize are skipped.
func (e *Engine) Reconcile(leads []domain.Lead, orders []OrderRecord) []Contact {
	now := e.now()
	index := make(map[string]int)
	out := make([]Contact, 0, len(leads))

	for _, l := range leads {
		key := phone.Normalize(l.Phone)
		if key == "" {
			continue
		}
		if _, ok := index[key]; ok {
			continue
		}
		leadID := l.ID
		status := l.Status

		c := Contact{
			Phone:         key,
			Name:          nonEmpty(l.CustomerName, domain.DefaultCustomerName),
			Address:       l.Address,
			LeadID:        &leadID,
			CurrentStatus: &status,
			ModeratorID:   copyUUID(l.ModeratorID),
		}
		if called, ok := l.CallDate(); ok {
			c.LastCallDate = &called
			c.DaysSinceCall = daysBetween(called, now)
		}
		index[key] = len(out)
		out = append(out, c)
	}

	for _, o := range orders {
		key := phone.Normalize(o.Phone)
		if key == "" {
			continue
		}
		placed := o.CreatedAt
		if i, ok := index[key]; ok {
			c := &out[i]
			c.TotalOrders++
			if c.LastOrderDate == nil || placed.After(*c.LastOrderDate) {
				c.LastOrderDate = &placed
				c.DaysSinceOrder = daysBetween(placed, now)
			}
			continue
		}

		index[key] = len(out)
		out = append(out, Contact{
			Phone:          key,
			Name:           o.CustomerName,
			Address:        o.Address,
			LastOrderDate:  &placed,
			DaysSinceOrder: daysBetween(placed, now),
			TotalOrders:    1,
		})
	}

	return out
}

// Filter returns the contacts matching every predicate in c.
func Filter(contacts []Contact, c Criteria) []Contact {
	search := strings.TrimSpace(c.Search)
	out := make([]Contact, 0, len(contacts))
	for _, ct := range contacts {
		if search != "" && !strings.Contains(ct.Phone, search) {
			continue
		}
		switch c.Status {
		case "", FilterAll:
		case FilterUnassigned:
			if !ct.Unassigned() {
				continue
			}
		default:
			if ct.CurrentStatus == nil || string(*ct.CurrentStatus) != c.Status {
				continue
			}
		}
		if c.MinDaysSinceCall != nil && (ct.DaysSinceCall == nil || *ct.DaysSinceCall < *c.MinDaysSinceCall) {
			continue
		}
		if c.MinDaysSinceOrder != nil && (ct.DaysSinceOrder == nil || *ct.DaysSinceOrder < *c.MinDaysSinceOrder) {
			continue
		}
		out = append(out, ct)
	}
	return out
}

// Sort orders contacts by most recent activity first. Contacts without any
// call or order keep their relative order at the end.
func Sort(contacts []Contact) {
	slices.SortStableFunc(contacts, func(a, b Contact) int {
		ta, okA := a.lastActivity()
		tb, okB := b.lastActivity()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return tb.Compare(ta)
	})
}

func daysBetween(from, to time.Time) *int {
	d := int(math.Floor(to.Sub(from).Hours() / 24))
	return &d
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
