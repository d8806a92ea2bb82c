package contacts

import (
	"testing"
	"time"

	"byabshik_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func daysAgo(n int) time.Time { return testNow.Add(-time.Duration(n) * 24 * time.Hour) }

func ptrInt(v int) *int { return &v }

func findContact(t *testing.T, contacts []Contact, key string) Contact {
	t.Helper()
	for _, c := range contacts {
		if c.Phone == key {
			return c
		}
	}
	t.Fatalf("contact %s not found in %d contacts", key, len(contacts))
	return Contact{}
}

func TestReconcileEnrichesLeadWithOrder(t *testing.T) {
	engine := New(fixedClock)
	t1 := daysAgo(10)
	t2 := daysAgo(3)

	leads := []domain.Lead{{
		ID:        uuid.New(),
		Phone:     "01711000000",
		Status:    domain.StatusConfirmed,
		CreatedAt: t1,
		UpdatedAt: t1,
	}}
	orders := []OrderRecord{{Phone: "1711000000", CustomerName: "Rahim", CreatedAt: t2}}

	got := engine.Reconcile(leads, orders)
	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}
	c := got[0]
	if c.TotalOrders != 1 {
		t.Errorf("expected totalOrders 1, got %d", c.TotalOrders)
	}
	if c.CurrentStatus == nil || *c.CurrentStatus != domain.StatusConfirmed {
		t.Errorf("expected confirmed status, got %v", c.CurrentStatus)
	}
	if c.DaysSinceOrder == nil || *c.DaysSinceOrder != 3 {
		t.Errorf("expected daysSinceOrder 3, got %v", c.DaysSinceOrder)
	}
	if c.DaysSinceCall == nil || *c.DaysSinceCall != 10 {
		t.Errorf("expected daysSinceCall 10, got %v", c.DaysSinceCall)
	}
	if c.Name != domain.DefaultCustomerName {
		t.Errorf("expected default name, got %q", c.Name)
	}
}

func TestReconcileNewestLeadWinsWhenSuppliedNewestFirst(t *testing.T) {
	engine := New(fixedClock)
	modOld, modNew := uuid.New(), uuid.New()
	older := domain.Lead{ID: uuid.New(), Phone: "+8801812345678", ModeratorID: &modOld, Status: domain.StatusNoResponse, CreatedAt: daysAgo(20)}
	newer := domain.Lead{ID: uuid.New(), Phone: "01812345678", ModeratorID: &modNew, Status: domain.StatusCommunication, CreatedAt: daysAgo(2)}

	c := findContact(t, engine.Reconcile([]domain.Lead{newer, older}, nil), "01812345678")
	if *c.CurrentStatus != domain.StatusCommunication || *c.ModeratorID != modNew || *c.LeadID != newer.ID {
		t.Fatalf("expected newest lead to win, got status=%s moderator=%s", *c.CurrentStatus, c.ModeratorID)
	}

	// Reversed input pins the stale result.
	c = findContact(t, engine.Reconcile([]domain.Lead{older, newer}, nil), "01812345678")
	if *c.CurrentStatus != domain.StatusNoResponse || *c.ModeratorID != modOld {
		t.Fatalf("expected stale lead to win for reversed input, got status=%s", *c.CurrentStatus)
	}
}

func TestReconcileLatestOrderWinsRegardlessOfOrder(t *testing.T) {
	engine := New(fixedClock)
	orders := []OrderRecord{
		{Phone: "01912345678", CreatedAt: daysAgo(5)},
		{Phone: "8801912345678", CreatedAt: daysAgo(1)},
		{Phone: "01912-345678", CreatedAt: daysAgo(9)},
	}

	c := findContact(t, engine.Reconcile(nil, orders), "01912345678")
	if c.TotalOrders != 3 {
		t.Errorf("expected 3 orders, got %d", c.TotalOrders)
	}
	if c.DaysSinceOrder == nil || *c.DaysSinceOrder != 1 {
		t.Errorf("expected latest order 1 day ago, got %v", c.DaysSinceOrder)
	}
}

func TestReconcileSkipsUnusablePhones(t *testing.T) {
	engine := New(fixedClock)
	got := engine.Reconcile(
		[]domain.Lead{{ID: uuid.New(), Phone: "123", Status: domain.StatusPending}},
		[]OrderRecord{{Phone: "", CreatedAt: daysAgo(1)}},
	)
	if len(got) != 0 {
		t.Fatalf("expected no contacts, got %d", len(got))
	}
}

func TestReconcilePendingLeadHasNoCallDate(t *testing.T) {
	engine := New(fixedClock)
	c := findContact(t, engine.Reconcile([]domain.Lead{{ID: uuid.New(), Phone: "01711111111", Status: domain.StatusPending, CreatedAt: daysAgo(4)}}, nil), "01711111111")
	if c.LastCallDate != nil || c.DaysSinceCall != nil {
		t.Fatalf("expected no call date for pending lead, got %v", c.DaysSinceCall)
	}
}

func TestFilterUnassignedMatchesOrderOnlyContact(t *testing.T) {
	engine := New(fixedClock)
	mod := uuid.New()
	contacts := engine.Reconcile(
		[]domain.Lead{{ID: uuid.New(), Phone: "01711000001", ModeratorID: &mod, Status: domain.StatusPending}},
		[]OrderRecord{{Phone: "01711000002", CreatedAt: daysAgo(1)}},
	)

	got := Filter(contacts, Criteria{Status: FilterUnassigned})
	if len(got) != 1 || got[0].Phone != "01711000002" {
		t.Fatalf("expected only the order contact, got %+v", got)
	}
	if got[0].ModeratorID != nil || got[0].CurrentStatus != nil {
		t.Fatal("order-only contact must have no moderator and no lead status")
	}
}

func TestFilterPredicates(t *testing.T) {
	engine := New(fixedClock)
	contacts := engine.Reconcile(
		[]domain.Lead{
			{ID: uuid.New(), Phone: "01711000001", Status: domain.StatusConfirmed, UpdatedAt: daysAgo(30)},
			{ID: uuid.New(), Phone: "01711000002", Status: domain.StatusConfirmed, UpdatedAt: daysAgo(2)},
			{ID: uuid.New(), Phone: "01811000003", Status: domain.StatusPending},
		},
		[]OrderRecord{{Phone: "01711000002", CreatedAt: daysAgo(40)}},
	)

	cases := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{"all", Criteria{Status: FilterAll}, 3},
		{"status", Criteria{Status: string(domain.StatusConfirmed)}, 2},
		{"search", Criteria{Search: "0181"}, 1},
		{"call threshold excludes never called", Criteria{MinDaysSinceCall: ptrInt(1)}, 2},
		{"call threshold", Criteria{MinDaysSinceCall: ptrInt(10)}, 1},
		{"order threshold", Criteria{MinDaysSinceOrder: ptrInt(30)}, 1},
		{"conjunctive", Criteria{Status: string(domain.StatusConfirmed), MinDaysSinceCall: ptrInt(10), MinDaysSinceOrder: ptrInt(1)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Filter(contacts, tc.criteria); len(got) != tc.want {
				t.Fatalf("expected %d contacts, got %d", tc.want, len(got))
			}
		})
	}
}

func TestSortByLatestActivity(t *testing.T) {
	call := daysAgo(5)
	orderOld := daysAgo(8)
	orderNew := daysAgo(1)
	contacts := []Contact{
		{Phone: "none"},
		{Phone: "call", LastCallDate: &call},
		{Phone: "order", LastOrderDate: &orderNew},
		{Phone: "mixed", LastOrderDate: &orderOld, LastCallDate: &call},
	}

	Sort(contacts)

	want := []string{"order", "call", "mixed", "none"}
	for i, w := range want {
		if contacts[i].Phone != w {
			t.Fatalf("position %d: expected %s, got %s", i, w, contacts[i].Phone)
		}
	}
}

func TestPlanAssignmentPartitions(t *testing.T) {
	mod := uuid.New()
	existing := uuid.New()
	date := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	plan := PlanAssignment([]Selection{
		{Phone: "01711000001", LeadID: &existing},
		{Phone: "+880 1711-000002", CustomerName: "Karim"},
		{Phone: "01711000002"},
		{Phone: "42"},
	}, mod, date, testNow)

	if len(plan.UpdateIDs) != 1 || plan.UpdateIDs[0] != existing {
		t.Fatalf("expected one update for the existing lead, got %v", plan.UpdateIDs)
	}
	if len(plan.Inserts) != 1 {
		t.Fatalf("expected one insert, got %d", len(plan.Inserts))
	}
	ins := plan.Inserts[0]
	if ins.Phone != "01711000002" || ins.CustomerName != "Karim" || ins.Status != domain.StatusPending {
		t.Errorf("unexpected insert %+v", ins)
	}
	if ins.ModeratorID == nil || *ins.ModeratorID != mod || ins.AssignedDate == nil || !ins.AssignedDate.Equal(date) {
		t.Errorf("insert must carry moderator and assigned date")
	}
}
