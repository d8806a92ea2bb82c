// Package service implements the lead workflows: the contact projection,
// bulk assignment, file import, and the moderator work queue.
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"byabshik_backend/internal/events"
	"byabshik_backend/internal/leads/contacts"
	"byabshik_backend/internal/leads/domain"
	"byabshik_backend/internal/leads/repository"
	"byabshik_backend/internal/leads/spreadsheet"
	"byabshik_backend/internal/leads/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/google/uuid"
)

// OrderHistory supplies the order side of the contact projection.
type OrderHistory interface {
	ContactOrders(ctx context.Context) ([]contacts.OrderRecord, error)
}

// ModeratorDirectory resolves moderator accounts.
type ModeratorDirectory interface {
	IsActiveModerator(ctx context.Context, id uuid.UUID) (bool, error)
	Names(ctx context.Context) (map[uuid.UUID]string, error)
}

// Service provides business logic for leads.
type Service struct {
	repo       repository.Repository
	orders     OrderHistory
	moderators ModeratorDirectory
	engine     *contacts.Engine
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time
}

// New creates a new leads service. A nil clock uses time.Now.
func New(repo repository.Repository, orders OrderHistory, moderators ModeratorDirectory, bus events.Bus, log *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:       repo,
		orders:     orders,
		moderators: moderators,
		engine:     contacts.New(now),
		bus:        bus,
		log:        log,
		now:        now,
	}
}

// ListContacts rebuilds the projection and applies the filters.
func (s *Service) ListContacts(ctx context.Context, req transport.ListContactsRequest) (transport.ContactListResponse, error) {
	list, err := s.contacts(ctx, req)
	if err != nil {
		return transport.ContactListResponse{}, err
	}
	items := make([]transport.ContactResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toContactResponse(c))
	}
	return transport.ContactListResponse{Items: items, Total: len(items)}, nil
}

// ExportContacts renders the filtered projection as an xlsx workbook.
func (s *Service) ExportContacts(ctx context.Context, req transport.ListContactsRequest) ([]byte, error) {
	list, err := s.contacts(ctx, req)
	if err != nil {
		return nil, err
	}
	names, err := s.moderators.Names(ctx)
	if err != nil {
		return nil, err
	}
	return spreadsheet.WriteContacts(list, names)
}

func (s *Service) contacts(ctx context.Context, req transport.ListContactsRequest) ([]contacts.Contact, error) {
	leads, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ContactOrders(ctx)
	if err != nil {
		return nil, err
	}

	list := contacts.Filter(s.engine.Reconcile(leads, orders), contacts.Criteria{
		Search:            req.Search,
		Status:            req.Status,
		MinDaysSinceCall:  req.MinDaysSinceCall,
		MinDaysSinceOrder: req.MinDaysSinceOrder,
	})
	contacts.Sort(list)
	return list, nil
}

// Assign hands the selected contacts to a moderator. Existing leads are
// reassigned with one update and the rest are created with one insert.
func (s *Service) Assign(ctx context.Context, req transport.AssignRequest) (transport.AssignResponse, error) {
	assignedDate, err := time.Parse(time.DateOnly, req.AssignedDate)
	if err != nil {
		return transport.AssignResponse{}, apperr.Validation("assignedDate must be YYYY-MM-DD")
	}
	active, err := s.moderators.IsActiveModerator(ctx, req.ModeratorID)
	if err != nil {
		return transport.AssignResponse{}, err
	}
	if !active {
		return transport.AssignResponse{}, apperr.Validation("moderator not found or inactive")
	}

	selected := make([]contacts.Selection, 0, len(req.Contacts))
	for _, c := range req.Contacts {
		selected = append(selected, contacts.Selection{
			Phone:        c.Phone,
			LeadID:       c.LeadID.Value,
			CustomerName: strings.TrimSpace(c.CustomerName),
			Address:      strings.TrimSpace(c.Address),
		})
	}
	plan := contacts.PlanAssignment(selected, req.ModeratorID, assignedDate, s.now())
	if plan.Empty() {
		return transport.AssignResponse{}, apperr.Validation("no assignable contacts in selection")
	}

	var resp transport.AssignResponse
	if len(plan.UpdateIDs) > 0 {
		n, err := s.repo.ReassignMany(ctx, plan.UpdateIDs, plan.ModeratorID, plan.AssignedDate)
		if err != nil {
			return transport.AssignResponse{}, err
		}
		resp.Updated = int(n)
	}
	if len(plan.Inserts) > 0 {
		n, err := s.repo.InsertMany(ctx, plan.Inserts)
		if err != nil {
			return resp, err
		}
		resp.Created = int(n)
	}

	s.log.Info("leads assigned", "moderatorId", req.ModeratorID, "updated", resp.Updated, "created", resp.Created)
	s.bus.Publish(ctx, events.LeadsAssigned{
		BaseEvent:   events.NewBaseEvent(),
		ModeratorID: req.ModeratorID,
		Updated:     resp.Updated,
		Created:     resp.Created,
	})
	return resp, nil
}

// Import creates unassigned pending leads from an uploaded file.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (transport.ImportResponse, error) {
	rows, err := spreadsheet.Parse(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
			return transport.ImportResponse{}, apperr.Validation("upload a .csv, .xlsx or .xls file")
		case errors.Is(err, spreadsheet.ErrUnreadableWorkbook):
			return transport.ImportResponse{}, apperr.Validation("the workbook could not be read; re-save it from Excel and upload again")
		}
		return transport.ImportResponse{}, apperr.Validation("could not read file: " + err.Error())
	}

	leads := spreadsheet.ToLeads(rows, s.now())
	if len(leads) == 0 {
		return transport.ImportResponse{}, apperr.Validation("no valid rows found; the sheet needs a phone column such as 'Phone' or 'Recipient Phone'").
			WithDetails(map[string]int{"rowsRead": len(rows)})
	}

	n, err := s.repo.InsertMany(ctx, leads)
	if err != nil {
		return transport.ImportResponse{}, err
	}
	s.log.Info("leads imported", "file", filename, "rows", len(rows), "created", n)
	return transport.ImportResponse{Created: int(n)}, nil
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListMine returns the caller's leads for today, tomorrow, or all days.
func (s *Service) ListMine(ctx context.Context, moderatorID uuid.UUID, req transport.ListMineRequest) ([]transport.LeadResponse, error) {
	var day *time.Time
	switch req.Day {
	case "today":
		d := dateOf(s.now())
		day = &d
	case "tomorrow":
		d := dateOf(s.now()).AddDate(0, 0, 1)
		day = &d
	}

	leads, err := s.repo.ListForModerator(ctx, moderatorID, day)
	if err != nil {
		return nil, err
	}
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}
	return out, nil
}

// UpdateStatus records a call outcome. Moderators may only touch leads
// assigned to them.
func (s *Service) UpdateStatus(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID, req transport.UpdateStatusRequest) (transport.LeadResponse, error) {
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return transport.LeadResponse{}, apperr.Validation("invalid lead status")
	}
	if !isAdmin {
		lead, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		if lead.ModeratorID == nil || *lead.ModeratorID != actorID {
			return transport.LeadResponse{}, apperr.Forbidden("lead is not assigned to you")
		}
	}

	lead, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// LatestByPhone returns the newest lead for a raw phone number, or nil.
func (s *Service) LatestByPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	return s.repo.LatestByPhone(ctx, phone)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toContactResponse(c contacts.Contact) transport.ContactResponse {
	status := contacts.FilterUnassigned
	if c.CurrentStatus != nil {
		status = string(*c.CurrentStatus)
	}
	return transport.ContactResponse{
		Phone:          c.Phone,
		Name:           c.Name,
		Address:        c.Address,
		LeadID:         c.LeadID,
		LastCallDate:   c.LastCallDate,
		DaysSinceCall:  c.DaysSinceCall,
		LastOrderDate:  c.LastOrderDate,
		DaysSinceOrder: c.DaysSinceOrder,
		TotalOrders:    c.TotalOrders,
		CurrentStatus:  status,
		ModeratorID:    c.ModeratorID,
	}
}

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	var assigned *string
	if l.AssignedDate != nil {
		v := l.AssignedDate.Format(time.DateOnly)
		assigned = &v
	}
	return transport.LeadResponse{
		ID:           l.ID,
		PhoneNumber:  l.Phone,
		CustomerName: l.CustomerName,
		Address:      l.Address,
		ModeratorID:  l.ModeratorID,
		Status:       string(l.Status),
		AssignedDate: assigned,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}
