package appointment

import "testing"

func TestStatusIsValid(t *testing.T) {
	valid := []Status{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}

	invalid := []Status{"", "pending", "rescheduled", "Scheduled", "SCHEDULED"}
	for _, s := range invalid {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestActiveStatuses(t *testing.T) {
	active := ActiveStatuses()
	if len(active) != 2 {
		t.Fatalf("expected 2 active statuses, got %d", len(active))
	}

	blocking := map[string]bool{}
	for _, s := range active {
		blocking[s] = true
	}
	if !blocking[string(StatusScheduled)] || !blocking[string(StatusConfirmed)] {
		t.Fatalf("scheduled and confirmed must occupy slots, got %v", active)
	}
	if blocking[string(StatusCancelled)] || blocking[string(StatusCompleted)] || blocking[string(StatusNoShow)] {
		t.Fatalf("terminal statuses must not occupy slots, got %v", active)
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus() != StatusScheduled {
		t.Fatalf("new appointments start scheduled, got %q", InitialStatus())
	}
}
