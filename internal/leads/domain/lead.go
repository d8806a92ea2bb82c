// Package domain holds the lead entity and its call-outcome states.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of the most recent call on a lead.
type Status string

const (
	StatusPending       Status = "pending"
	StatusConfirmed     Status = "confirmed"
	StatusCommunication Status = "communication"
	StatusNoResponse    Status = "no-response"
)

// DefaultCustomerName is used when a lead arrives without a name.
const DefaultCustomerName = "Prospect"

var validStatuses = map[Status]struct{}{
	StatusPending:       {},
	StatusConfirmed:     {},
	StatusCommunication: {},
	StatusNoResponse:    {},
}

// ParseStatus returns the Status for s, or false if s is not a lead status.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := validStatuses[st]
	return st, ok
}

// Lead is a prospective customer queued for an outreach call.
// ModeratorID is nil while the lead is unassigned.
type Lead struct {
	ID           uuid.UUID
	Phone        string
	CustomerName string
	Address      string
	ModeratorID  *uuid.UUID
	Status       Status
	AssignedDate *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CallDate is when the current call outcome was recorded. Pending leads have
// not been called yet.
func (l Lead) CallDate() (time.Time, bool) {
	if l.Status == StatusPending {
		return time.Time{}, false
	}
	if l.UpdatedAt.IsZero() {
		return l.CreatedAt, true
	}
	return l.UpdatedAt, true
}
