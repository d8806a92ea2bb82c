package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	couriertransport "byabshik_backend/internal/courier/transport"
	"byabshik_backend/platform/apperr"
	"byabshik_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeCourier struct {
	syncErr    error
	synced     []string
	dispatched [][]string
}

func (f *fakeCourier) BulkDispatch(_ context.Context, ids []string) couriertransport.BulkDispatchResponse {
	f.dispatched = append(f.dispatched, ids)
	return couriertransport.BulkDispatchResponse{Dispatched: len(ids)}
}

func (f *fakeCourier) Sync(_ context.Context, id string) (couriertransport.SyncResponse, error) {
	f.synced = append(f.synced, id)
	if f.syncErr != nil {
		return couriertransport.SyncResponse{}, f.syncErr
	}
	return couriertransport.SyncResponse{OrderID: id, Status: "delivered", Changed: true}, nil
}

func newTestWorker(courier CourierJobs) *Worker {
	w := &Worker{mux: asynq.NewServeMux(), courier: courier, log: logger.New("test")}
	w.routes()
	return w
}

func TestStatusSyncTask(t *testing.T) {
	task, err := NewCourierStatusSyncTask(CourierStatusSyncPayload{OrderID: "ORD-123456"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskCourierStatusSync {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	cases := []struct {
		name    string
		syncErr error
		wantErr bool
	}{
		{"synced", nil, false},
		{"simulated order is not retried", apperr.Validation("order was dispatched in simulation"), false},
		{"courier outage is retried", apperr.Upstream("courier unreachable", errors.New("timeout")), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			courier := &fakeCourier{syncErr: tc.syncErr}
			err := newTestWorker(courier).mux.ProcessTask(context.Background(), task)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ProcessTask error = %v, wantErr %v", err, tc.wantErr)
			}
			if len(courier.synced) != 1 || courier.synced[0] != "ORD-123456" {
				t.Fatalf("unexpected syncs %v", courier.synced)
			}
		})
	}
}

func TestDispatchTask(t *testing.T) {
	courier := &fakeCourier{}
	task, err := NewCourierDispatchTask(CourierDispatchPayload{OrderIDs: []string{"ORD-1", "ORD-2"}})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	if err := newTestWorker(courier).mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(courier.dispatched) != 1 || len(courier.dispatched[0]) != 2 {
		t.Fatalf("unexpected dispatches %v", courier.dispatched)
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TaskCourierDispatch, []byte("{"))
	err := newTestWorker(&fakeCourier{}).mux.ProcessTask(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

type countingSyncer struct{ calls atomic.Int32 }

func (c *countingSyncer) SyncAll(context.Context) (couriertransport.SyncAllResponse, error) {
	c.calls.Add(1)
	return couriertransport.SyncAllResponse{Checked: 1}, nil
}

func TestStatusSyncRunnerSyncsImmediatelyAndOnTick(t *testing.T) {
	syncer := &countingSyncer{}
	runner := NewStatusSyncRunner(syncer, logger.New("test"), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for syncer.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 syncs, got %d", syncer.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
