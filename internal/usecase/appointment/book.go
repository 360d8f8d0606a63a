package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/orthoflow/clinic-api/internal/audit"
	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	PatientID         string
	DoctorID          string
	RoomID            *string
	AppointmentTypeID string

	Date string
	Time string

	Reason string
	Notes  string

	RequestedBy string
}

// ======================================================
// USE CASE
// ======================================================

// BookAppointment validates a booking candidate and commits it. Preconditions
// run in a fixed order so the first violated one decides the failure; both
// conflict searches and the insert share one transaction.
type BookAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewBookAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *BookAppointment {
	return &BookAppointment{
		repo:  repo,
		audit: audit,
	}
}

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return nil, httperr.ValidationErr("invalid_date")
	}
	if _, err := time.Parse(timeLayout, in.Time); err != nil {
		return nil, httperr.ValidationErr("invalid_time")
	}

	roomID := normalizeRoomID(in.RoomID)

	if err := uc.checkReferences(ctx, uc.repo, in.PatientID, in.DoctorID, roomID, in.AppointmentTypeID); err != nil {
		return nil, err
	}

	var created *models.Appointment

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		if err := assertSlotFree(ctx, tx, in.DoctorID, roomID, in.Date, in.Time, ""); err != nil {
			return err
		}

		ap := &models.Appointment{
			PatientID:         in.PatientID,
			DoctorID:          in.DoctorID,
			RoomID:            roomID,
			AppointmentTypeID: in.AppointmentTypeID,
			AppointmentDate:   in.Date,
			AppointmentTime:   in.Time,
			Status:            string(domain.InitialStatus()),
			Reason:            in.Reason,
			Notes:             in.Notes,
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		created = ap
		return nil
	})

	if err != nil {
		// A racer that passed the conflict search still trips the partial
		// unique index; surface it as the same conflict.
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ConflictErr("time_conflict")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.RequestedBy,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &created.ID,
	})

	return created, nil
}

// ======================================================
// SHARED CHECKS
// ======================================================

func (uc *BookAppointment) checkReferences(
	ctx context.Context,
	repo domain.Repository,
	patientID string,
	doctorID string,
	roomID *string,
	typeID string,
) error {

	if _, err := repo.GetPatient(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.NotFoundErr("patient_not_found")
		}
		return err
	}

	doctor, err := repo.GetDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.NotFoundErr("doctor_not_found")
		}
		return err
	}
	if !doctor.IsActive {
		return httperr.InactiveErr("doctor_inactive")
	}

	if roomID != nil {
		room, err := repo.GetRoom(ctx, *roomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.NotFoundErr("room_not_found")
			}
			return err
		}
		if !room.IsAvailable {
			return httperr.UnavailableErr("room_unavailable")
		}
	}

	if _, err := repo.GetAppointmentType(ctx, typeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.NotFoundErr("appointment_type_not_found")
		}
		return err
	}

	return nil
}

// assertSlotFree runs the doctor conflict search, then the room search when a
// room is claimed. excludeID keeps an updated appointment from colliding with
// itself.
func assertSlotFree(
	ctx context.Context,
	repo domain.Repository,
	doctorID string,
	roomID *string,
	date string,
	timeOfDay string,
	excludeID string,
) error {

	conflict, err := repo.HasDoctorConflict(ctx, doctorID, date, timeOfDay, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return httperr.ConflictErr("doctor_double_booked")
	}

	if roomID != nil {
		conflict, err := repo.HasRoomConflict(ctx, *roomID, date, timeOfDay, excludeID)
		if err != nil {
			return err
		}
		if conflict {
			return httperr.ConflictErr("room_double_booked")
		}
	}

	return nil
}

func normalizeRoomID(roomID *string) *string {
	if roomID == nil || *roomID == "" {
		return nil
	}
	return roomID
}
