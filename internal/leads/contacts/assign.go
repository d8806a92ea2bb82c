package contacts

import (
	"time"

	"byabshik_backend/internal/leads/domain"
	"byabshik_backend/platform/phone"

	"github.com/google/uuid"
)

// Selection is a contact picked for assignment.
type Selection struct {
	Phone        string
	LeadID       *uuid.UUID
	CustomerName string
	Address      string
}

// AssignmentPlan splits a selection into leads to reassign in place and
// leads to create.
type AssignmentPlan struct {
	ModeratorID  uuid.UUID
	AssignedDate time.Time
	UpdateIDs    []uuid.UUID
	Inserts      []domain.Lead
}

// Empty reports whether the plan has nothing to write.
func (p AssignmentPlan) Empty() bool {
	return len(p.UpdateIDs) == 0 && len(p.Inserts) == 0
}

// PlanAssignment partitions the selection before any write happens.
// Selections with a lead reference are reassigned; the rest become new
// pending leads. Duplicate lead ids and phones are collapsed, and
// selections without a usable phone are dropped from the insert side.
func PlanAssignment(selected []Selection, moderatorID uuid.UUID, assignedDate, now time.Time) AssignmentPlan {
	plan := AssignmentPlan{ModeratorID: moderatorID, AssignedDate: assignedDate}
	seenIDs := make(map[uuid.UUID]struct{})
	seenPhones := make(map[string]struct{})

	for _, s := range selected {
		if s.LeadID != nil {
			if _, dup := seenIDs[*s.LeadID]; dup {
				continue
			}
			seenIDs[*s.LeadID] = struct{}{}
			plan.UpdateIDs = append(plan.UpdateIDs, *s.LeadID)
			continue
		}

		key := phone.Normalize(s.Phone)
		if key == "" {
			continue
		}
		if _, dup := seenPhones[key]; dup {
			continue
		}
		seenPhones[key] = struct{}{}

		mod := moderatorID
		date := assignedDate
		plan.Inserts = append(plan.Inserts, domain.Lead{
			ID:           uuid.New(),
			Phone:        key,
			CustomerName: nonEmpty(s.CustomerName, domain.DefaultCustomerName),
			Address:      s.Address,
			ModeratorID:  &mod,
			Status:       domain.StatusPending,
			AssignedDate: &date,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return plan
}
