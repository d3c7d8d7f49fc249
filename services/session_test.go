package services

import (
	"errors"
	"testing"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
)

func TestSessionStoreOpenResetsPartsForOtherJob(t *testing.T) {
	store := NewSessionStore()
	user, company := uuid.New(), uuid.New()
	items := stockItems()
	jobA := &models.WorkOrder{ID: uuid.New(), Title: "A"}
	jobB := &models.WorkOrder{ID: uuid.New(), Title: "B"}

	store.Open(user, company, jobA, nil, items)
	if _, _, err := store.SetQuantityUsed(user, jobA.ID, items[0].ID, 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	store.Open(user, company, jobA, nil, items)
	if got := store.Usage(user, jobA.ID)[items[0].ID]; got != 2 {
		t.Fatalf("expected usage kept when reopening, got %d", got)
	}

	store.Open(user, company, jobB, nil, items)
	if got := len(store.Usage(user, jobB.ID)); got != 0 {
		t.Fatalf("expected empty usage for new job, got %d entries", got)
	}
	if store.Usage(user, jobA.ID) != nil {
		t.Fatalf("expected no usage for a job that is no longer open")
	}
}

func TestSessionStoreRequiresOpenJob(t *testing.T) {
	store := NewSessionStore()
	user := uuid.New()
	items := stockItems()

	if _, _, err := store.SetQuantityUsed(user, uuid.New(), items[0].ID, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	job := &models.WorkOrder{ID: uuid.New()}
	store.Open(user, uuid.New(), job, nil, items)
	if _, _, err := store.SetQuantityUsed(user, uuid.New(), items[0].ID, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for another job, got %v", err)
	}
	stored, known, err := store.SetQuantityUsed(user, job.ID, items[0].ID, 99)
	if err != nil || !known || stored != items[0].Quantity {
		t.Fatalf("expected clamp to %d, got %d known=%v err=%v", items[0].Quantity, stored, known, err)
	}
}

func TestSessionStoreViewAndClear(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	store.now = fixedClock(now)
	user := uuid.New()
	items := stockItems()
	job := &models.WorkOrder{ID: uuid.New(), Title: "Fix leak"}
	timer := &models.TimeEntry{ID: uuid.New(), StartTime: now.Add(-90 * time.Second)}

	if _, ok := store.View(user, TrackingIdle); ok {
		t.Fatalf("expected no view before open")
	}

	store.Open(user, uuid.New(), job, timer, items)
	store.SetQuantityUsed(user, job.ID, items[1].ID, 1)

	view, ok := store.View(user, TrackingActive)
	if !ok {
		t.Fatalf("expected a view")
	}
	if view.JobTitle != "Fix leak" || view.Elapsed != "00:01:30" || view.Tracking != TrackingActive {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.PartsUsed) != 1 || view.PartsSubtotal.String() != "30" {
		t.Fatalf("unexpected parts %+v subtotal %s", view.PartsUsed, view.PartsSubtotal)
	}

	store.SetTimer(user, job.ID, nil)
	store.ClearParts(user, job.ID)
	view, _ = store.View(user, TrackingIdle)
	if view.ActiveTimer != nil || view.Elapsed != "" || len(view.PartsUsed) != 0 {
		t.Fatalf("expected cleared view, got %+v", view)
	}

	store.Close(user)
	if _, ok := store.View(user, TrackingIdle); ok {
		t.Fatalf("expected no view after close")
	}
}
