package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"byabshik_backend/internal/courier/steadfast"
	"byabshik_backend/internal/courier/transport"
	"byabshik_backend/internal/events"
	"byabshik_backend/internal/orders/domain"
	"byabshik_backend/internal/orders/repository"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	// steal makes RecordDispatch lose the conditional write.
	steal bool
}

func newStore(orders ...domain.Order) *fakeStore {
	s := &fakeStore{orders: map[string]*domain.Order{}}
	for i := range orders {
		o := orders[i]
		s.orders[o.ID] = &o
	}
	return s
}

func (f *fakeStore) GetByID(_ context.Context, id string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, apperr.NotFound("order not found")
	}
	return *o, nil
}

func (f *fakeStore) RecordDispatch(_ context.Context, id, cid, courierStatus string, simulated bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[id]
	if f.steal {
		other := "SF-OTHER"
		o.SteadfastID = &other
		return false, nil
	}
	if o.Dispatched() {
		return false, nil
	}
	o.SteadfastID, o.CourierStatus = &cid, &courierStatus
	o.DispatchSimulated = simulated
	o.Status = domain.StatusConfirmed
	return true, nil
}

func (f *fakeStore) RecordCourierStatus(_ context.Context, id, courierStatus string, status domain.Status) (repository.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.StatusChange{}, apperr.NotFound("order not found")
	}
	old := o.Status
	o.CourierStatus, o.Status = &courierStatus, status
	return repository.StatusChange{OrderID: id, Old: old, New: status}, nil
}

func (f *fakeStore) FindByConsignment(_ context.Context, cid string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.SteadfastID != nil && *o.SteadfastID == cid {
			return *o, nil
		}
	}
	return domain.Order{}, apperr.NotFound("order not found")
}

func (f *fakeStore) ListInFlight(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.Dispatched() && !o.DispatchSimulated && !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeCourier struct {
	mu       sync.Mutex
	creates  []string
	fail     map[string]error
	statuses map[string]string
}

func (f *fakeCourier) CreateOrder(_ context.Context, _ steadfast.Credentials, in steadfast.CreateOrderInput) (steadfast.Consignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in.Invoice)
	if err := f.fail[in.Invoice]; err != nil {
		return steadfast.Consignment{}, err
	}
	return steadfast.Consignment{ID: "CID-" + in.Invoice, Status: "in_review"}, nil
}

func (f *fakeCourier) StatusByConsignment(_ context.Context, _ steadfast.Credentials, cid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[cid]; err != nil {
		return "", err
	}
	return f.statuses[cid], nil
}

func (f *fakeCourier) Balance(context.Context, steadfast.Credentials) (decimal.Decimal, error) {
	return decimal.NewFromInt(250), nil
}

type staticCreds steadfast.Credentials

func (s staticCreds) CourierCredentials(context.Context) (steadfast.Credentials, error) {
	return steadfast.Credentials(s), nil
}

var validCreds = staticCreds{BaseURL: "http://courier", APIKey: "k", SecretKey: "s"}

func newTestService(store *fakeStore, courier *fakeCourier, opts Options) *Service {
	log := logger.New("test")
	return New(store, courier, validCreds, events.NewInMemoryBus(log), log, opts)
}

func pendingOrder(id string) domain.Order {
	return domain.Order{ID: id, CustomerName: "Rahim", CustomerPhone: "01711000001", CustomerAddress: "Dhaka", GrandTotal: decimal.NewFromInt(500), Status: domain.StatusPending}
}

func TestDispatchIsIdempotent(t *testing.T) {
	store := newStore(pendingOrder("ORD-100001"))
	courier := &fakeCourier{}
	svc := newTestService(store, courier, Options{})

	first, err := svc.Dispatch(context.Background(), "ORD-100001")
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if first.Outcome != OutcomeConfirmed || first.ConsignmentID != "CID-ORD-100001" {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := svc.Dispatch(context.Background(), "ORD-100001")
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if second.Outcome != OutcomeAlreadyDispatched || second.ConsignmentID != first.ConsignmentID {
		t.Fatalf("unexpected second result %+v", second)
	}
	if len(courier.creates) != 1 {
		t.Fatalf("expected one creation request, got %d", len(courier.creates))
	}
	o, _ := store.GetByID(context.Background(), "ORD-100001")
	if o.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", o.Status)
	}
}

func TestBulkDispatchContinuesPastFailure(t *testing.T) {
	store := newStore(pendingOrder("ORD-1"), pendingOrder("ORD-2"), pendingOrder("ORD-3"))
	courier := &fakeCourier{fail: map[string]error{"ORD-2": &steadfast.APIError{Status: 400, Message: "Invalid phone"}}}
	svc := newTestService(store, courier, Options{})

	resp := svc.BulkDispatch(context.Background(), []string{"ORD-1", "ORD-2", "ORD-3"})
	if resp.Dispatched != 2 || resp.Failed != 1 || resp.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", resp)
	}
	for _, id := range []string{"ORD-1", "ORD-3"} {
		o, _ := store.GetByID(context.Background(), id)
		if !o.Dispatched() || o.Status != domain.StatusConfirmed {
			t.Errorf("%s should be dispatched and confirmed", id)
		}
	}
	o, _ := store.GetByID(context.Background(), "ORD-2")
	if o.Dispatched() || o.Status != domain.StatusPending {
		t.Error("failed order must stay untouched")
	}
	if got := strings.Join(courier.creates, ","); got != "ORD-1,ORD-2,ORD-3" {
		t.Errorf("expected sequential processing in input order, got %s", got)
	}
}

func TestBulkDispatchSkipsDispatched(t *testing.T) {
	cid := "CID-OLD"
	done := pendingOrder("ORD-1")
	done.SteadfastID = &cid
	store := newStore(done, pendingOrder("ORD-2"))
	courier := &fakeCourier{}
	svc := newTestService(store, courier, Options{})

	resp := svc.BulkDispatch(context.Background(), []string{"ORD-1", "ORD-2", "ORD-2"})
	if resp.Dispatched != 1 || resp.Skipped != 1 || len(courier.creates) != 1 {
		t.Fatalf("unexpected summary %+v creates=%v", resp, courier.creates)
	}
}

func TestAmbiguousTransportSimulatesDispatch(t *testing.T) {
	store := newStore(pendingOrder("ORD-1"))
	courier := &fakeCourier{fail: map[string]error{"ORD-1": fmt.Errorf("%w: html response", steadfast.ErrTransportAmbiguous)}}
	svc := newTestService(store, courier, Options{})

	res, err := svc.Dispatch(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Outcome != OutcomeSimulated || !res.Simulated || res.CourierStatus != "pending" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.ConsignmentID) != len("SF-1234567") || !strings.HasPrefix(res.ConsignmentID, "SF-") {
		t.Fatalf("unexpected placeholder id %q", res.ConsignmentID)
	}
	o, _ := store.GetByID(context.Background(), "ORD-1")
	if !o.DispatchSimulated || o.Status != domain.StatusConfirmed {
		t.Fatal("simulated dispatch must be stored and flagged")
	}
	if _, err := svc.Sync(context.Background(), "ORD-1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("placeholder consignments cannot be synced, got %v", err)
	}
}

func TestStructuredRejectionIsSurfacedVerbatim(t *testing.T) {
	store := newStore(pendingOrder("ORD-1"))
	courier := &fakeCourier{fail: map[string]error{"ORD-1": &steadfast.APIError{Status: 401, Message: "Unauthorized credentials"}}}
	svc := newTestService(store, courier, Options{})

	_, err := svc.Dispatch(context.Background(), "ORD-1")
	if !apperr.Is(err, apperr.KindUpstream) || !strings.Contains(err.Error(), "Unauthorized credentials") {
		t.Fatalf("expected upstream error with courier text, got %v", err)
	}
	o, _ := store.GetByID(context.Background(), "ORD-1")
	if o.Dispatched() || o.Status != domain.StatusPending {
		t.Fatal("rejected dispatch must leave the order unchanged")
	}
}

func TestLostConditionalWriteReportsAlreadyDispatched(t *testing.T) {
	store := newStore(pendingOrder("ORD-1"))
	store.steal = true
	svc := newTestService(store, &fakeCourier{}, Options{})

	res, err := svc.Dispatch(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Outcome != OutcomeAlreadyDispatched || res.ConsignmentID != "SF-OTHER" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMissingCredentialsIsValidation(t *testing.T) {
	log := logger.New("test")
	svc := New(newStore(pendingOrder("ORD-1")), &fakeCourier{}, staticCreds{}, events.NewInMemoryBus(log), log, Options{})
	if _, err := svc.Dispatch(context.Background(), "ORD-1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMapStatus(t *testing.T) {
	tests := map[string]domain.Status{
		"delivered":                  domain.StatusDelivered,
		"partial_delivered":          domain.StatusDelivered,
		"cancelled":                  domain.StatusCancelled,
		"hold":                       domain.StatusOnHold,
		"in_review":                  domain.StatusProcessing,
		"pending":                    domain.StatusProcessing,
		"delivered_approval_pending": domain.StatusProcessing,
		"":                           domain.StatusProcessing,
	}
	for raw, want := range tests {
		if got := MapStatus(raw); got != want {
			t.Errorf("MapStatus(%q) = %s, want %s", raw, got, want)
		}
	}
}

func dispatchedOrder(id, cid string, status domain.Status) domain.Order {
	o := pendingOrder(id)
	o.SteadfastID = &cid
	o.Status = status
	return o
}

func TestSyncAll(t *testing.T) {
	store := newStore(
		dispatchedOrder("ORD-1", "C1", domain.StatusConfirmed),
		dispatchedOrder("ORD-2", "C2", domain.StatusConfirmed),
		dispatchedOrder("ORD-3", "C3", domain.StatusProcessing),
		dispatchedOrder("ORD-4", "C4", domain.StatusDelivered),
	)
	courier := &fakeCourier{
		statuses: map[string]string{"C1": "delivered", "C3": "in_review"},
		fail:     map[string]error{"C2": fmt.Errorf("%w: timeout", steadfast.ErrTransportAmbiguous)},
	}
	svc := newTestService(store, courier, Options{SyncConcurrency: 2})

	resp, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}
	if resp.Checked != 3 || resp.Updated != 1 || resp.Failed != 1 {
		t.Fatalf("unexpected summary %+v", resp)
	}
	o, _ := store.GetByID(context.Background(), "ORD-1")
	if o.Status != domain.StatusDelivered || *o.CourierStatus != "delivered" {
		t.Fatalf("ORD-1 not updated: %+v", o)
	}
}

func TestWebhook(t *testing.T) {
	store := newStore(dispatchedOrder("ORD-1", "1424107", domain.StatusConfirmed), dispatchedOrder("ORD-2", "99", domain.StatusConfirmed))
	svc := newTestService(store, &fakeCourier{}, Options{})
	ctx := context.Background()

	if _, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "tracking_update", ConsignmentID: "1424107"}); err != nil {
		t.Fatalf("tracking update: %v", err)
	}
	if o, _ := store.GetByID(ctx, "ORD-1"); o.Status != domain.StatusConfirmed {
		t.Fatal("non-status notifications must be ignored")
	}

	if _, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "delivery_status", ConsignmentID: "1424107", Status: "cancelled"}); err != nil {
		t.Fatalf("delivery status: %v", err)
	}
	if o, _ := store.GetByID(ctx, "ORD-1"); o.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", o.Status)
	}

	if _, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "delivery_status", ConsignmentID: "404", Invoice: "ORD-2", Status: "delivered"}); err != nil {
		t.Fatalf("invoice fallback: %v", err)
	}
	if o, _ := store.GetByID(ctx, "ORD-2"); o.Status != domain.StatusDelivered {
		t.Fatalf("expected delivered via invoice, got %s", o.Status)
	}

	_, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "delivery_status", ConsignmentID: "404", Status: "delivered"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWebhookInvoiceFallbackRequiresDispatch(t *testing.T) {
	simulated := dispatchedOrder("ORD-2", "SF-1234567", domain.StatusConfirmed)
	simulated.DispatchSimulated = true
	store := newStore(pendingOrder("ORD-1"), simulated)
	svc := newTestService(store, &fakeCourier{}, Options{})
	ctx := context.Background()

	_, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "delivery_status", ConsignmentID: "404", Invoice: "ORD-1", Status: "delivered"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if o, _ := store.GetByID(ctx, "ORD-1"); o.Status != domain.StatusPending || o.CourierStatus != nil {
		t.Fatalf("undispatched order must be untouched: %+v", o)
	}

	if _, err := svc.HandleWebhook(ctx, transport.WebhookPayload{NotificationType: "delivery_status", ConsignmentID: "1424107", Invoice: "ORD-2", Status: "delivered"}); err != nil {
		t.Fatalf("placeholder order by invoice: %v", err)
	}
	if o, _ := store.GetByID(ctx, "ORD-2"); o.Status != domain.StatusDelivered {
		t.Fatalf("expected delivered, got %s", o.Status)
	}
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rc.Close() }()
	locker := NewRedisLocker(rc)
	ctx := context.Background()

	release, ok, err := locker.Acquire(ctx, "dispatch:ORD-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := locker.Acquire(ctx, "dispatch:ORD-1", time.Minute); ok {
		t.Fatal("second holder must be refused")
	}
	release()
	release2, ok, err := locker.Acquire(ctx, "dispatch:ORD-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
	release2()
}

func TestDispatchRefusedWhileLocked(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rc.Close() }()
	locker := NewRedisLocker(rc)
	release, _, _ := locker.Acquire(context.Background(), "dispatch:ORD-1", time.Minute)
	defer release()

	courier := &fakeCourier{}
	svc := newTestService(newStore(pendingOrder("ORD-1")), courier, Options{Locker: locker})
	if _, err := svc.Dispatch(context.Background(), "ORD-1"); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(courier.creates) != 0 {
		t.Fatal("courier must not be called without the lock")
	}
}
