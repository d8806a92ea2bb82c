// Package events defines the domain events exchanged between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"byabshik_backend/platform/events"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Order Domain Events
// =============================================================================

// OrderCreated is published after an order and its stock movements commit.
type OrderCreated struct {
	BaseEvent
	OrderID     string     `json:"orderId"`
	ModeratorID *uuid.UUID `json:"moderatorId,omitempty"`
	Phone       string     `json:"phone"`
}

func (e OrderCreated) EventName() string { return "orders.order.created" }

// OrderStatusChanged is published whenever an order's status moves, whether
// by an admin, by dispatch, or by a courier status update.
type OrderStatusChanged struct {
	BaseEvent
	OrderID   string `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	Source    string `json:"source"`
}

func (e OrderStatusChanged) EventName() string { return "orders.order.status_changed" }

// =============================================================================
// Courier Domain Events
// =============================================================================

// OrderDispatched is published when an order receives a consignment id.
// Simulated is true when the id is a local placeholder.
type OrderDispatched struct {
	BaseEvent
	OrderID       string `json:"orderId"`
	ConsignmentID string `json:"consignmentId"`
	Simulated     bool   `json:"simulated"`
}

func (e OrderDispatched) EventName() string { return "courier.order.dispatched" }

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadsAssigned is published after a bulk assignment commits.
type LeadsAssigned struct {
	BaseEvent
	ModeratorID uuid.UUID `json:"moderatorId"`
	Updated     int       `json:"updated"`
	Created     int       `json:"created"`
}

func (e LeadsAssigned) EventName() string { return "leads.bulk.assigned" }
