package courier

import (
	"context"
	"testing"
	"time"

	"byabshik_backend/internal/events"
)

type recordedSync struct {
	orderID string
	delay   time.Duration
}

type fakeSyncScheduler struct {
	calls []recordedSync
}

func (f *fakeSyncScheduler) ScheduleStatusSync(_ context.Context, orderID string, delay time.Duration) error {
	f.calls = append(f.calls, recordedSync{orderID: orderID, delay: delay})
	return nil
}

func TestRegisterHandlersSchedulesRealDispatches(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	syncs := &fakeSyncScheduler{}
	(&Module{}).RegisterHandlers(bus, syncs, time.Hour)

	ctx := context.Background()
	if err := bus.PublishSync(ctx, events.OrderDispatched{OrderID: "ORD-100001", ConsignmentID: "123"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.PublishSync(ctx, events.OrderDispatched{OrderID: "ORD-100002", ConsignmentID: "SF-1234567", Simulated: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(syncs.calls) != 1 {
		t.Fatalf("expected one scheduled sync, got %d", len(syncs.calls))
	}
	if syncs.calls[0].orderID != "ORD-100001" || syncs.calls[0].delay != time.Hour {
		t.Fatalf("unexpected sync %+v", syncs.calls[0])
	}
}
