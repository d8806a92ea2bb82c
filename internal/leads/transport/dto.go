// Package transport holds the request and response shapes of the leads API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListContactsRequest filters the contact projection.
type ListContactsRequest struct {
	Search            string `form:"search" validate:"max=20"`
	Status            string `form:"status" validate:"omitempty,oneof=all pending confirmed communication no-response unassigned"`
	MinDaysSinceCall  *int   `form:"minDaysSinceCall" validate:"omitempty,min=0"`
	MinDaysSinceOrder *int   `form:"minDaysSinceOrder" validate:"omitempty,min=0"`
}

// ContactResponse is one row of the contact projection.
type ContactResponse struct {
	Phone          string     `json:"phone"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	LeadID         *uuid.UUID `json:"leadId"`
	LastCallDate   *time.Time `json:"lastCallDate"`
	DaysSinceCall  *int       `json:"daysSinceCall"`
	LastOrderDate  *time.Time `json:"lastOrderDate"`
	DaysSinceOrder *int       `json:"daysSinceOrder"`
	TotalOrders    int        `json:"totalOrders"`
	CurrentStatus  string     `json:"currentStatus"`
	ModeratorID    *uuid.UUID `json:"moderatorId"`
}

// ContactListResponse wraps the projection.
type ContactListResponse struct {
	Items []ContactResponse `json:"items"`
	Total int               `json:"total"`
}

// AssignContact is a selected contact in a bulk assignment.
type AssignContact struct {
	Phone        string       `json:"phone" validate:"required,max=32"`
	LeadID       OptionalUUID `json:"leadId"`
	CustomerName string       `json:"customerName" validate:"max=200"`
	Address      string       `json:"address" validate:"max=500"`
}

// AssignRequest hands a selection of contacts to one moderator.
type AssignRequest struct {
	ModeratorID  uuid.UUID       `json:"moderatorId" validate:"required"`
	AssignedDate string          `json:"assignedDate" validate:"required,datetime=2006-01-02"`
	Contacts     []AssignContact `json:"contacts" validate:"required,min=1,max=5000,dive"`
}

// AssignResponse reports how many leads were moved and created.
type AssignResponse struct {
	Updated int `json:"updated"`
	Created int `json:"created"`
}

// ImportResponse reports how many leads an upload created.
type ImportResponse struct {
	Created int `json:"created"`
}

// ListMineRequest selects a moderator's work queue.
type ListMineRequest struct {
	Day string `form:"day" validate:"omitempty,oneof=today tomorrow all"`
}

// UpdateStatusRequest records a call outcome.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed communication no-response"`
}

// LeadResponse is a stored lead.
type LeadResponse struct {
	ID           uuid.UUID  `json:"id"`
	PhoneNumber  string     `json:"phoneNumber"`
	CustomerName string     `json:"customerName"`
	Address      string     `json:"address"`
	ModeratorID  *uuid.UUID `json:"moderatorId"`
	Status       string     `json:"status"`
	AssignedDate *string    `json:"assignedDate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
