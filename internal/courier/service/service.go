// Package service coordinates order hand-off to the courier and keeps
// shipment status in step with the courier's records.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"byabshik_backend/internal/courier/steadfast"
	"byabshik_backend/internal/courier/transport"
	"byabshik_backend/internal/events"
	"byabshik_backend/internal/orders/domain"
	"byabshik_backend/internal/orders/repository"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/shopspring/decimal"
)

// Dispatch outcomes. Simulated means the courier was unreachable and a
// placeholder consignment was recorded instead of a confirmed one.
const (
	OutcomeConfirmed         = "confirmed"
	OutcomeSimulated         = "simulated"
	OutcomeAlreadyDispatched = "already_dispatched"

	// SourceCourier marks status changes driven by the courier.
	SourceCourier = "courier"

	defaultNote            = "Order from Byabshik OS"
	simulatedCourierStatus = "pending"
	lockTTL                = time.Minute
)

var simulatedIDSpan = big.NewInt(9000000)

// OrderStore is the slice of the order repository the coordinator uses.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (domain.Order, error)
	RecordDispatch(ctx context.Context, id, consignmentID, courierStatus string, simulated bool) (bool, error)
	RecordCourierStatus(ctx context.Context, id, courierStatus string, status domain.Status) (repository.StatusChange, error)
	FindByConsignment(ctx context.Context, consignmentID string) (domain.Order, error)
	ListInFlight(ctx context.Context) ([]domain.Order, error)
}

// Courier is the external shipment API.
type Courier interface {
	CreateOrder(ctx context.Context, creds steadfast.Credentials, in steadfast.CreateOrderInput) (steadfast.Consignment, error)
	StatusByConsignment(ctx context.Context, creds steadfast.Credentials, consignmentID string) (string, error)
	Balance(ctx context.Context, creds steadfast.Credentials) (decimal.Decimal, error)
}

// CredentialSource resolves the courier account in effect.
type CredentialSource interface {
	CourierCredentials(ctx context.Context) (steadfast.Credentials, error)
}

// Enqueuer hands work to the background worker.
type Enqueuer interface {
	EnqueueBulkDispatch(ctx context.Context, orderIDs []string) error
}

// Service is the courier dispatch coordinator.
type Service struct {
	orders      OrderStore
	courier     Courier
	creds       CredentialSource
	locker      Locker
	enqueuer    Enqueuer
	bus         events.Bus
	log         *logger.Logger
	concurrency int
}

// Options carry the optional collaborators.
type Options struct {
	// Locker guards the courier call per order. Nil runs without a lock.
	Locker Locker
	// Enqueuer enables background bulk dispatch.
	Enqueuer Enqueuer
	// SyncConcurrency caps parallel status queries. Values below 1 mean 1.
	SyncConcurrency int
}

// New creates a new courier service.
func New(orders OrderStore, courier Courier, creds CredentialSource, bus events.Bus, log *logger.Logger, opts Options) *Service {
	locker := opts.Locker
	if locker == nil {
		locker = localLocker{}
	}
	concurrency := opts.SyncConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		orders:      orders,
		courier:     courier,
		creds:       creds,
		locker:      locker,
		enqueuer:    opts.Enqueuer,
		bus:         bus,
		log:         log,
		concurrency: concurrency,
	}
}

// Dispatch hands one order to the courier. An order that already carries
// a consignment id is never sent again.
func (s *Service) Dispatch(ctx context.Context, orderID string) (transport.DispatchResponse, error) {
	release, ok, err := s.locker.Acquire(ctx, "dispatch:"+orderID, lockTTL)
	if err != nil {
		return transport.DispatchResponse{}, apperr.Wrap(apperr.KindUnavailable, "dispatch lock unavailable", err)
	}
	if !ok {
		return transport.DispatchResponse{}, apperr.Conflict("dispatch already in progress for this order")
	}
	defer release()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return transport.DispatchResponse{}, err
	}
	if order.Dispatched() {
		return alreadyDispatched(order), nil
	}
	if order.Status.Terminal() {
		return transport.DispatchResponse{}, apperr.Validation("order is " + string(order.Status) + " and cannot be dispatched")
	}

	creds, err := s.credentials(ctx)
	if err != nil {
		return transport.DispatchResponse{}, err
	}

	note := strings.TrimSpace(order.Notes)
	if note == "" {
		note = defaultNote
	}
	result := transport.DispatchResponse{OrderID: order.ID, Outcome: OutcomeConfirmed}
	consignment, err := s.courier.CreateOrder(ctx, creds, steadfast.CreateOrderInput{
		Invoice:          order.ID,
		RecipientName:    order.CustomerName,
		RecipientPhone:   order.CustomerPhone,
		RecipientAddress: order.CustomerAddress,
		CODAmount:        order.GrandTotal,
		Note:             note,
	})
	switch {
	case err == nil:
		result.ConsignmentID, result.CourierStatus = consignment.ID, consignment.Status
	case errors.Is(err, steadfast.ErrTransportAmbiguous):
		result.Outcome = OutcomeSimulated
		result.ConsignmentID = simulatedConsignmentID()
		result.CourierStatus = simulatedCourierStatus
		result.Simulated = true
	default:
		dispatchTotal.WithLabelValues("failed").Inc()
		return transport.DispatchResponse{}, courierError(err)
	}

	stored, err := s.orders.RecordDispatch(ctx, order.ID, result.ConsignmentID, result.CourierStatus, result.Simulated)
	if err != nil {
		return transport.DispatchResponse{}, err
	}
	if !stored {
		current, err := s.orders.GetByID(ctx, order.ID)
		if err != nil {
			return transport.DispatchResponse{}, err
		}
		s.log.Warn("dispatch lost conditional write", "orderId", order.ID, "discardedConsignment", result.ConsignmentID)
		return alreadyDispatched(current), nil
	}

	dispatchTotal.WithLabelValues(result.Outcome).Inc()
	s.log.WithContext(ctx).DispatchOutcome(order.ID, result.Outcome, result.ConsignmentID)
	s.bus.Publish(ctx, events.OrderDispatched{
		BaseEvent:     events.NewBaseEvent(),
		OrderID:       order.ID,
		ConsignmentID: result.ConsignmentID,
		Simulated:     result.Simulated,
	})
	if order.Status != domain.StatusConfirmed {
		s.bus.Publish(ctx, events.OrderStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			OrderID:   order.ID,
			OldStatus: string(order.Status),
			NewStatus: string(domain.StatusConfirmed),
			Source:    SourceCourier,
		})
	}
	return result, nil
}

// BulkDispatch dispatches the orders one at a time. Already dispatched
// orders are skipped and failures do not stop the batch.
func (s *Service) BulkDispatch(ctx context.Context, orderIDs []string) transport.BulkDispatchResponse {
	var resp transport.BulkDispatchResponse
	seen := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if ctx.Err() != nil {
			resp.Failed++
			continue
		}

		result, err := s.Dispatch(ctx, id)
		switch {
		case err != nil:
			resp.Failed++
			s.log.Warn("bulk dispatch item failed", "orderId", id, "error", err)
		case result.Outcome == OutcomeAlreadyDispatched:
			resp.Skipped++
		default:
			resp.Dispatched++
		}
	}
	s.log.Info("bulk dispatch finished", "dispatched", resp.Dispatched, "skipped", resp.Skipped, "failed", resp.Failed)
	return resp
}

// QueueBulkDispatch runs BulkDispatch in the background worker.
func (s *Service) QueueBulkDispatch(ctx context.Context, orderIDs []string) (transport.BulkDispatchQueued, error) {
	if s.enqueuer == nil {
		return transport.BulkDispatchQueued{}, apperr.Unavailable("background dispatch requires REDIS_URL")
	}
	if err := s.enqueuer.EnqueueBulkDispatch(ctx, orderIDs); err != nil {
		return transport.BulkDispatchQueued{}, apperr.Wrap(apperr.KindUnavailable, "could not queue dispatch", err)
	}
	return transport.BulkDispatchQueued{Queued: len(orderIDs)}, nil
}

func (s *Service) credentials(ctx context.Context) (steadfast.Credentials, error) {
	creds, err := s.creds.CourierCredentials(ctx)
	if err != nil {
		return steadfast.Credentials{}, err
	}
	if !creds.Complete() {
		return steadfast.Credentials{}, apperr.Validation("API keys are missing in Settings")
	}
	return creds, nil
}

func alreadyDispatched(o domain.Order) transport.DispatchResponse {
	resp := transport.DispatchResponse{
		OrderID:   o.ID,
		Outcome:   OutcomeAlreadyDispatched,
		Simulated: o.DispatchSimulated,
	}
	if o.SteadfastID != nil {
		resp.ConsignmentID = *o.SteadfastID
	}
	if o.CourierStatus != nil {
		resp.CourierStatus = *o.CourierStatus
	}
	return resp
}

// courierError maps a courier failure onto the error taxonomy. Structured
// rejections keep the courier's message verbatim.
func courierError(err error) error {
	var apiErr *steadfast.APIError
	switch {
	case errors.As(err, &apiErr):
		return apperr.Upstream(apiErr.Message, err)
	case errors.Is(err, steadfast.ErrTransportAmbiguous):
		return apperr.Upstream("courier unreachable", err)
	case errors.Is(err, steadfast.ErrInvalidResponse):
		return apperr.Upstream("Invalid response format from server.", err)
	case errors.Is(err, steadfast.ErrMissingCredentials):
		return apperr.Validation("API keys are missing in Settings")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("courier call: %w", err)
	}
}

func simulatedConsignmentID() string {
	n, err := rand.Int(rand.Reader, simulatedIDSpan)
	if err != nil {
		return fmt.Sprintf("SF-%07d", 1000000+time.Now().UnixNano()%9000000)
	}
	return fmt.Sprintf("SF-%d", 1000000+n.Int64())
}
