package appointment

import (
	"context"
	"testing"

	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/httperr"
)

func seededRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.seedPatient("patient-1")
	repo.seedDoctor("doctor-1", true)
	repo.seedDoctor("doctor-2", true)
	repo.seedRoom("room-1", true)
	repo.seedRoom("room-2", true)
	repo.seedType("type-1")
	return repo
}

func bookInput() BookAppointmentInput {
	roomID := "room-1"
	return BookAppointmentInput{
		PatientID:         "patient-1",
		DoctorID:          "doctor-1",
		RoomID:            &roomID,
		AppointmentTypeID: "type-1",
		Date:              "2026-09-15",
		Time:              "14:30",
		RequestedBy:       "user-1",
	}
}

func assertBusinessCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	if !httperr.IsBusiness(err, wantCode) {
		t.Fatalf("expected business error %q, got %v", wantCode, err)
	}
}

func TestBookAppointment(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	ap, err := uc.Execute(context.Background(), bookInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ap.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected initial status scheduled, got %q", ap.Status)
	}
	if ap.RoomID == nil || *ap.RoomID != "room-1" {
		t.Fatalf("expected room-1, got %v", ap.RoomID)
	}
}

func TestBookAppointmentWithoutRoom(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	in := bookInput()
	in.RoomID = nil

	ap, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ap.RoomID != nil {
		t.Fatalf("expected no room, got %v", *ap.RoomID)
	}
}

func TestBookAppointmentEmptyRoomIDTreatedAsNone(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	empty := ""
	in := bookInput()
	in.RoomID = &empty

	ap, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ap.RoomID != nil {
		t.Fatal("empty room id should book without a room")
	}
}

func TestBookAppointmentInvalidSlotFormat(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	in := bookInput()
	in.Date = "15/09/2026"
	_, err := uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "invalid_date")

	in = bookInput()
	in.Time = "2pm"
	_, err = uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "invalid_time")
}

func TestBookAppointmentMissingReferences(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*BookAppointmentInput)
		wantCode string
	}{
		{"patient", func(in *BookAppointmentInput) { in.PatientID = "ghost" }, "patient_not_found"},
		{"doctor", func(in *BookAppointmentInput) { in.DoctorID = "ghost" }, "doctor_not_found"},
		{"room", func(in *BookAppointmentInput) { id := "ghost"; in.RoomID = &id }, "room_not_found"},
		{"type", func(in *BookAppointmentInput) { in.AppointmentTypeID = "ghost" }, "appointment_type_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := seededRepo()
			uc := NewBookAppointment(repo, nil)

			in := bookInput()
			tc.mutate(&in)

			_, err := uc.Execute(context.Background(), in)
			assertBusinessCode(t, err, tc.wantCode)
		})
	}
}

func TestBookAppointmentInactiveDoctor(t *testing.T) {
	repo := seededRepo()
	repo.seedDoctor("doctor-off", false)
	uc := NewBookAppointment(repo, nil)

	in := bookInput()
	in.DoctorID = "doctor-off"

	_, err := uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "doctor_inactive")
}

func TestBookAppointmentUnavailableRoom(t *testing.T) {
	repo := seededRepo()
	repo.seedRoom("room-closed", false)
	uc := NewBookAppointment(repo, nil)

	roomID := "room-closed"
	in := bookInput()
	in.RoomID = &roomID

	_, err := uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "room_unavailable")
}

func TestBookAppointmentDoctorDoubleBooked(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	if _, err := uc.Execute(context.Background(), bookInput()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	in := bookInput()
	in.RoomID = nil // different room claim, same doctor slot
	_, err := uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "doctor_double_booked")
}

func TestBookAppointmentRoomDoubleBooked(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	if _, err := uc.Execute(context.Background(), bookInput()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	in := bookInput()
	in.DoctorID = "doctor-2" // different doctor, same room slot
	_, err := uc.Execute(context.Background(), in)
	assertBusinessCode(t, err, "room_double_booked")
}

func TestBookAppointmentDifferentSlotSameDoctor(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	if _, err := uc.Execute(context.Background(), bookInput()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	in := bookInput()
	in.Time = "15:00"
	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("adjacent slot should book: %v", err)
	}
}

func TestBookAppointmentCancelledSlotIsFree(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	first, err := uc.Execute(context.Background(), bookInput())
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	repo.appointments[first.ID].Status = string(domain.StatusCancelled)

	if _, err := uc.Execute(context.Background(), bookInput()); err != nil {
		t.Fatalf("cancelled appointment should release the slot: %v", err)
	}
}

func TestBookAppointmentCompletedSlotIsFree(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	first, err := uc.Execute(context.Background(), bookInput())
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	repo.appointments[first.ID].Status = string(domain.StatusCompleted)

	if _, err := uc.Execute(context.Background(), bookInput()); err != nil {
		t.Fatalf("completed appointment should release the slot: %v", err)
	}
}

func TestBookAppointmentConfirmedStillBlocks(t *testing.T) {
	repo := seededRepo()
	uc := NewBookAppointment(repo, nil)

	first, err := uc.Execute(context.Background(), bookInput())
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	repo.appointments[first.ID].Status = string(domain.StatusConfirmed)

	_, err = uc.Execute(context.Background(), bookInput())
	assertBusinessCode(t, err, "doctor_double_booked")
}
