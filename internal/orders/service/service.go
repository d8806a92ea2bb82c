// Package service implements order placement, listing, the phone lookup used
// by the order form, manual status overrides, and invoice rendering.
package service

import (
	"context"
	"errors"
	"strings"

	"byabshik_backend/internal/events"
	"byabshik_backend/internal/orders/domain"
	"byabshik_backend/internal/orders/repository"
	"byabshik_backend/internal/orders/transport"
	"byabshik_backend/internal/pdf"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/phone"
	"byabshik_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxIDAttempts  = 3
	vipOrderCount  = 3
	defaultCompany = "Byabshik"

	// SourceAdmin marks a status change made by hand.
	SourceAdmin = "admin"
)

var vipLifetimeValue = decimal.NewFromInt(5000)

// LeadContact is what the lookup needs from a matching lead.
type LeadContact struct {
	Name    string
	Address string
}

// LeadLookup finds the newest lead for a normalized phone number.
type LeadLookup interface {
	LatestLeadByPhone(ctx context.Context, phone string) (*LeadContact, error)
}

// Brand is the company identity printed on invoices.
type Brand struct {
	CompanyName string
	Logo        []byte
	ContentType string
}

// Branding supplies the invoice brand. Missing branding is not an error.
type Branding interface {
	InvoiceBrand(ctx context.Context) (Brand, error)
}

// Service provides business logic for orders.
type Service struct {
	repo     repository.Repository
	leads    LeadLookup
	branding Branding
	bus      events.Bus
	log      *logger.Logger
	newID    func() string
}

// New creates a new orders service. A nil leads lookup turns off the
// lead fallback in Lookup.
func New(repo repository.Repository, leads LeadLookup, branding Branding, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		leads:    leads,
		branding: branding,
		bus:      bus,
		log:      log,
		newID:    domain.NewOrderID,
	}
}

// Create places an order. Prices and names are read from the locked
// products so the captured item price is the one in effect at commit.
func (s *Service) Create(ctx context.Context, moderatorID uuid.UUID, req transport.CreateOrderRequest) (transport.OrderResponse, error) {
	customerPhone := phone.Normalize(req.CustomerPhone)
	if !phone.IsValidMobile(customerPhone) {
		return transport.OrderResponse{}, apperr.Validation("customerPhone must be a valid Bangladeshi mobile number")
	}
	region, ok := domain.ParseRegion(req.DeliveryRegion)
	if !ok {
		return transport.OrderResponse{}, apperr.Validation("deliveryRegion must be inside or outside")
	}
	customerName := sanitize.Line(req.CustomerName)
	if customerName == "" {
		return transport.OrderResponse{}, apperr.Validation("customerName is required")
	}
	customerAddress := sanitize.Line(req.CustomerAddress)
	if customerAddress == "" {
		return transport.OrderResponse{}, apperr.Validation("customerAddress is required")
	}
	quantities, productIDs := mergeItems(req.Items)
	if len(productIDs) == 0 {
		return transport.OrderResponse{}, apperr.Validation("at least one item is required")
	}

	history, err := s.repo.ListByPhone(ctx, customerPhone)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	successRate := domain.SuccessRate(history)

	discount := decimal.NewFromFloat(req.Discount)
	advance := decimal.NewFromFloat(req.AdvanceAmount)

	var order domain.Order
	for attempt := 1; ; attempt++ {
		id := s.newID()
		order, err = s.repo.Create(ctx, productIDs, func(products map[uuid.UUID]repository.ProductSnapshot) (domain.Order, error) {
			items := make([]domain.Item, 0, len(productIDs))
			for _, pid := range productIDs {
				p, found := products[pid]
				if !found {
					return domain.Order{}, apperr.Validation("product " + pid.String() + " not found")
				}
				qty := quantities[pid]
				if p.Stock < qty {
					return domain.Order{}, apperr.Validation("insufficient stock for " + p.Name)
				}
				items = append(items, domain.Item{
					ProductID: p.ID,
					SKU:       p.SKU,
					Name:      p.Name,
					Quantity:  qty,
					Price:     p.Price,
				})
			}

			o := domain.Order{
				ID:              id,
				ModeratorID:     &moderatorID,
				CustomerName:    customerName,
				CustomerPhone:   customerPhone,
				CustomerAddress: customerAddress,
				Region:          region,
				Items:           items,
				Status:          domain.StatusPending,
				Notes:           sanitize.Text(req.Notes),
				SuccessRate:     &successRate,
			}
			domain.ComputeTotals(items, region, discount, advance).Apply(&o)
			return o, nil
		})
		if errors.Is(err, repository.ErrDuplicateOrderID) && attempt < maxIDAttempts {
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOrderID) {
			return transport.OrderResponse{}, apperr.Conflict("could not allocate an order id, retry")
		}
		return transport.OrderResponse{}, err
	}

	s.log.Info("order created", "orderId", order.ID, "moderatorId", moderatorID, "grandTotal", order.GrandTotal.String())
	s.bus.Publish(ctx, events.OrderCreated{
		BaseEvent:   events.NewBaseEvent(),
		OrderID:     order.ID,
		ModeratorID: order.ModeratorID,
		Phone:       order.CustomerPhone,
	})
	return ToOrderResponse(order), nil
}

// mergeItems folds repeated products into one line, keeping first-seen order.
func mergeItems(items []transport.OrderItemRequest) (map[uuid.UUID]int, []uuid.UUID) {
	quantities := make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}
	return quantities, ids
}

// List returns orders newest first. Moderators only see their own.
func (s *Service) List(ctx context.Context, actorID uuid.UUID, isAdmin bool, req transport.ListOrdersRequest) (transport.OrderListResponse, error) {
	params := repository.ListParams{Search: strings.TrimSpace(req.Search)}
	if req.Status != "" {
		st, ok := domain.ParseStatus(req.Status)
		if !ok {
			return transport.OrderListResponse{}, apperr.Validation("invalid order status")
		}
		params.Status = &st
	}
	if req.Region != "" {
		r, ok := domain.ParseRegion(req.Region)
		if !ok {
			return transport.OrderListResponse{}, apperr.Validation("invalid delivery region")
		}
		params.Region = &r
	}
	if !isAdmin {
		params.ModeratorID = &actorID
	}

	orders, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.OrderListResponse{}, err
	}
	items := make([]transport.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, ToOrderResponse(o))
	}
	return transport.OrderListResponse{Items: items, Total: len(items)}, nil
}

// Get returns one order. A moderator may only read orders they placed.
func (s *Service) Get(ctx context.Context, actorID uuid.UUID, isAdmin bool, id string) (transport.OrderResponse, error) {
	order, err := s.visibleOrder(ctx, actorID, isAdmin, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return ToOrderResponse(order), nil
}

func (s *Service) visibleOrder(ctx context.Context, actorID uuid.UUID, isAdmin bool, id string) (domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !isAdmin && (order.ModeratorID == nil || *order.ModeratorID != actorID) {
		return domain.Order{}, apperr.Forbidden("order belongs to another moderator")
	}
	return order, nil
}

// Lookup summarizes what is known about a phone number before an order is
// taken: past orders first, then the newest lead.
func (s *Service) Lookup(ctx context.Context, req transport.LookupRequest) (transport.LookupResponse, error) {
	normalized := phone.Normalize(req.Phone)
	if normalized == "" {
		return transport.LookupResponse{}, apperr.Validation("phone number is not usable")
	}
	resp := transport.LookupResponse{Status: transport.LookupNone, Phone: normalized, SuccessRate: domain.NewCustomer}

	history, err := s.repo.ListByPhone(ctx, normalized)
	if err != nil {
		return transport.LookupResponse{}, err
	}
	if len(history) > 0 {
		ltv := decimal.Zero
		for _, o := range history {
			ltv = ltv.Add(o.TotalAmount)
		}
		latest := history[0]
		resp.Status = transport.LookupFoundCustomer
		resp.OrderCount = len(history)
		resp.LTV = ltv.InexactFloat64()
		resp.IsVIP = len(history) >= vipOrderCount || ltv.GreaterThan(vipLifetimeValue)
		resp.SuccessRate = domain.SuccessRate(history)
		resp.Name = latest.CustomerName
		resp.Address = latest.CustomerAddress
		return resp, nil
	}

	if s.leads == nil {
		return resp, nil
	}
	lead, err := s.leads.LatestLeadByPhone(ctx, normalized)
	if err != nil {
		return transport.LookupResponse{}, err
	}
	if lead != nil {
		resp.Status = transport.LookupFoundLead
		resp.Name = lead.Name
		resp.Address = lead.Address
	}
	return resp, nil
}

// UpdateStatus is a manual admin override.
func (s *Service) UpdateStatus(ctx context.Context, id string, req transport.UpdateStatusRequest) (transport.OrderResponse, error) {
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return transport.OrderResponse{}, apperr.Validation("invalid order status")
	}
	change, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	s.publishChange(ctx, change)

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return ToOrderResponse(order), nil
}

// UpdateStatusMany overrides the status of several orders in one write.
func (s *Service) UpdateStatusMany(ctx context.Context, req transport.BulkUpdateStatusRequest) (transport.BulkUpdateStatusResponse, error) {
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return transport.BulkUpdateStatusResponse{}, apperr.Validation("invalid order status")
	}
	changes, err := s.repo.UpdateStatusMany(ctx, req.IDs, status)
	if err != nil {
		return transport.BulkUpdateStatusResponse{}, err
	}
	for _, c := range changes {
		s.publishChange(ctx, c)
	}
	return transport.BulkUpdateStatusResponse{Updated: len(changes)}, nil
}

func (s *Service) publishChange(ctx context.Context, c repository.StatusChange) {
	if c.Old == c.New {
		return
	}
	s.bus.Publish(ctx, events.OrderStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   c.OrderID,
		OldStatus: string(c.Old),
		NewStatus: string(c.New),
		Source:    SourceAdmin,
	})
}

// Invoice renders the order invoice as PDF bytes.
func (s *Service) Invoice(ctx context.Context, actorID uuid.UUID, isAdmin bool, id string) ([]byte, error) {
	order, err := s.visibleOrder(ctx, actorID, isAdmin, id)
	if err != nil {
		return nil, err
	}

	brand := Brand{CompanyName: defaultCompany}
	if s.branding != nil {
		b, err := s.branding.InvoiceBrand(ctx)
		if err != nil {
			s.log.Warn("invoice branding unavailable", "orderId", id, "error", err)
		} else {
			if b.CompanyName != "" {
				brand.CompanyName = b.CompanyName
			}
			brand.Logo, brand.ContentType = b.Logo, b.ContentType
		}
	}

	data := pdf.InvoiceData{
		CompanyName:       brand.CompanyName,
		OrderID:           order.ID,
		Status:            string(order.Status),
		CreatedAt:         order.CreatedAt,
		Notes:             order.Notes,
		CustomerName:      order.CustomerName,
		CustomerPhone:     order.CustomerPhone,
		CustomerAddress:   order.CustomerAddress,
		DeliveryRegion:    string(order.Region),
		Subtotal:          order.TotalAmount,
		DeliveryCharge:    order.DeliveryCharge,
		Discount:          order.Discount,
		Advance:           order.AdvanceAmount,
		GrandTotal:        order.GrandTotal,
		DispatchSimulated: order.DispatchSimulated,
	}
	if ext, ok := pdf.LogoExtension(brand.ContentType); ok && len(brand.Logo) > 0 {
		data.Logo, data.LogoExt = brand.Logo, ext
	}
	if order.SuccessRate != nil {
		data.SuccessRate = *order.SuccessRate
	}
	if order.SteadfastID != nil {
		data.ConsignmentID = *order.SteadfastID
	}
	if order.CourierStatus != nil {
		data.CourierStatus = *order.CourierStatus
	}
	for _, it := range order.Items {
		data.Items = append(data.Items, pdf.InvoiceLine{
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: it.LineTotal(),
		})
	}

	out, err := pdf.GenerateInvoicePDF(data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "render invoice", err)
	}
	return out, nil
}

// ContactRows exposes the order side of the contact projection.
func (s *Service) ContactRows(ctx context.Context) ([]repository.ContactRow, error) {
	return s.repo.ListContactRows(ctx)
}

// ToOrderResponse maps an order onto its API shape.
func ToOrderResponse(o domain.Order) transport.OrderResponse {
	items := make([]transport.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, transport.OrderItemResponse{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
			LineTotal: it.LineTotal().InexactFloat64(),
		})
	}
	rate := domain.NewCustomer
	if o.SuccessRate != nil {
		rate = *o.SuccessRate
	}
	return transport.OrderResponse{
		ID:                o.ID,
		ModeratorID:       o.ModeratorID,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		CustomerAddress:   o.CustomerAddress,
		DeliveryRegion:    string(o.Region),
		Items:             items,
		TotalAmount:       o.TotalAmount.InexactFloat64(),
		DeliveryCharge:    o.DeliveryCharge.InexactFloat64(),
		Discount:          o.Discount.InexactFloat64(),
		AdvanceAmount:     o.AdvanceAmount.InexactFloat64(),
		GrandTotal:        o.GrandTotal.InexactFloat64(),
		Status:            string(o.Status),
		Notes:             o.Notes,
		SteadfastID:       o.SteadfastID,
		CourierStatus:     o.CourierStatus,
		DispatchSimulated: o.DispatchSimulated,
		SuccessRate:       rate,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
