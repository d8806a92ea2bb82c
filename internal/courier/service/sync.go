package service

import (
	"context"
	"strings"
	"sync/atomic"

	"byabshik_backend/internal/courier/steadfast"
	"byabshik_backend/internal/courier/transport"
	"byabshik_backend/internal/events"
	"byabshik_backend/internal/orders/domain"
	"byabshik_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// MapStatus maps the courier's delivery vocabulary onto order statuses.
func MapStatus(raw string) domain.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delivered", "partial_delivered":
		return domain.StatusDelivered
	case "cancelled":
		return domain.StatusCancelled
	case "hold":
		return domain.StatusOnHold
	default:
		return domain.StatusProcessing
	}
}

// Sync refreshes one dispatched order from the courier. It never creates
// a consignment.
func (s *Service) Sync(ctx context.Context, orderID string) (transport.SyncResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return transport.SyncResponse{}, err
	}
	if !order.Dispatched() {
		return transport.SyncResponse{}, apperr.Validation("order has not been dispatched")
	}
	if order.DispatchSimulated {
		return transport.SyncResponse{}, apperr.Validation("consignment " + *order.SteadfastID + " is a placeholder and cannot be tracked")
	}
	creds, err := s.credentials(ctx)
	if err != nil {
		return transport.SyncResponse{}, err
	}
	return s.syncOrder(ctx, creds, order)
}

func (s *Service) syncOrder(ctx context.Context, creds steadfast.Credentials, order domain.Order) (transport.SyncResponse, error) {
	raw, err := s.courier.StatusByConsignment(ctx, creds, *order.SteadfastID)
	if err != nil {
		statusSyncTotal.WithLabelValues("failed").Inc()
		return transport.SyncResponse{}, courierError(err)
	}
	return s.applyCourierStatus(ctx, order.ID, raw)
}

func (s *Service) applyCourierStatus(ctx context.Context, orderID, raw string) (transport.SyncResponse, error) {
	mapped := MapStatus(raw)
	change, err := s.orders.RecordCourierStatus(ctx, orderID, raw, mapped)
	if err != nil {
		statusSyncTotal.WithLabelValues("failed").Inc()
		return transport.SyncResponse{}, err
	}
	changed := change.Old != change.New
	if changed {
		statusSyncTotal.WithLabelValues("changed").Inc()
		s.bus.Publish(ctx, events.OrderStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			OrderID:   orderID,
			OldStatus: string(change.Old),
			NewStatus: string(change.New),
			Source:    SourceCourier,
		})
	} else {
		statusSyncTotal.WithLabelValues("unchanged").Inc()
	}
	return transport.SyncResponse{
		OrderID:       orderID,
		CourierStatus: raw,
		Status:        string(mapped),
		Changed:       changed,
	}, nil
}

// SyncAll refreshes every dispatched order that is not yet terminal, a few
// at a time. Individual failures are counted and logged.
func (s *Service) SyncAll(ctx context.Context) (transport.SyncAllResponse, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return transport.SyncAllResponse{}, err
	}
	orders, err := s.orders.ListInFlight(ctx)
	if err != nil {
		return transport.SyncAllResponse{}, err
	}

	var updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, o := range orders {
		g.Go(func() error {
			res, err := s.syncOrder(gctx, creds, o)
			if err != nil {
				failed.Add(1)
				s.log.Warn("status sync failed", "orderId", o.ID, "error", err)
				return nil
			}
			if res.Changed {
				updated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := transport.SyncAllResponse{
		Checked: len(orders),
		Updated: int(updated.Load()),
		Failed:  int(failed.Load()),
	}
	s.log.Info("courier status sync finished", "checked", resp.Checked, "updated", resp.Updated, "failed", resp.Failed)
	return resp, nil
}

// HandleWebhook applies a courier notification. Types other than delivery
// status are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, p transport.WebhookPayload) (transport.WebhookResponse, error) {
	if p.NotificationType != transport.NotificationDeliveryStatus {
		return transport.WebhookResponse{Status: "success", Message: "ignored"}, nil
	}
	if strings.TrimSpace(p.Status) == "" {
		return transport.WebhookResponse{}, apperr.Validation("status is required")
	}

	order, err := s.webhookOrder(ctx, p)
	if err != nil {
		return transport.WebhookResponse{}, err
	}
	res, err := s.applyCourierStatus(ctx, order.ID, p.Status)
	if err != nil {
		return transport.WebhookResponse{}, err
	}
	s.log.Info("courier webhook applied", "orderId", order.ID, "courierStatus", res.CourierStatus, "status", res.Status)
	return transport.WebhookResponse{Status: "success", Message: "Webhook received successfully."}, nil
}

func (s *Service) webhookOrder(ctx context.Context, p transport.WebhookPayload) (domain.Order, error) {
	if cid := string(p.ConsignmentID); cid != "" {
		order, err := s.orders.FindByConsignment(ctx, cid)
		if err == nil || !apperr.Is(err, apperr.KindNotFound) {
			return order, err
		}
	}
	if invoice := strings.TrimSpace(p.Invoice); invoice != "" {
		order, err := s.orders.GetByID(ctx, invoice)
		if err != nil {
			return domain.Order{}, err
		}
		// A placeholder consignment still matches by invoice: the courier
		// reporting on it means the ambiguous create went through.
		if !order.Dispatched() {
			return domain.Order{}, apperr.Validation("order has not been dispatched")
		}
		return order, nil
	}
	return domain.Order{}, apperr.NotFound("no order matches this consignment")
}

// TestConnection verifies the configured credentials against the balance
// endpoint. An unreachable courier is a failure here.
func (s *Service) TestConnection(ctx context.Context) (transport.TestConnectionResponse, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return transport.TestConnectionResponse{}, err
	}
	balance, err := s.courier.Balance(ctx, creds)
	if err != nil {
		return transport.TestConnectionResponse{}, courierError(err)
	}
	return transport.TestConnectionResponse{Balance: balance.InexactFloat64()}, nil
}
