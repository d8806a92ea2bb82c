package domain

import (
	"testing"
	"time"
)

func TestCallDateFollowsLastStatusChange(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	called := created.Add(72 * time.Hour)

	if _, ok := (Lead{Status: StatusPending, CreatedAt: created, UpdatedAt: called}).CallDate(); ok {
		t.Fatal("pending lead must have no call date")
	}
	if got, ok := (Lead{Status: StatusConfirmed, CreatedAt: created, UpdatedAt: called}).CallDate(); !ok || !got.Equal(called) {
		t.Fatalf("expected call date %v, got %v (%v)", called, got, ok)
	}
	if got, _ := (Lead{Status: StatusNoResponse, CreatedAt: created}).CallDate(); !got.Equal(created) {
		t.Fatalf("expected fallback to created date, got %v", got)
	}
}
