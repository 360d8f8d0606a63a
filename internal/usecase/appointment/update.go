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

// ======================================================
// INPUT
// ======================================================

// Nil pointer means "not in the change-set"; the stored value stays.
type UpdateAppointmentInput struct {
	PatientID         *string
	DoctorID          *string
	RoomID            *string
	AppointmentTypeID *string

	Date *string
	Time *string

	Status *string
	Reason *string
	Notes  *string

	RequestedBy string
}

// ======================================================
// USE CASE
// ======================================================

// UpdateAppointment applies a partial update. Conflict checks run only when
// the change-set touches the slot (doctor, room, date or time), and always
// against the merged record, never the changed fields in isolation.
type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:  repo,
		audit: audit,
	}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	id string,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.NotFoundErr("appointment_not_found")
		}
		return nil, err
	}

	if in.Date != nil {
		if _, err := time.Parse(dateLayout, *in.Date); err != nil {
			return nil, httperr.ValidationErr("invalid_date")
		}
	}
	if in.Time != nil {
		if _, err := time.Parse(timeLayout, *in.Time); err != nil {
			return nil, httperr.ValidationErr("invalid_time")
		}
	}
	if in.Status != nil && !domain.Status(*in.Status).IsValid() {
		return nil, httperr.ValidationErr("invalid_status")
	}

	if err := uc.checkChangedReferences(ctx, in); err != nil {
		return nil, err
	}

	// Effective slot after merging the change-set over the stored record.
	doctorID := ap.DoctorID
	if in.DoctorID != nil {
		doctorID = *in.DoctorID
	}
	date := ap.AppointmentDate
	if in.Date != nil {
		date = *in.Date
	}
	timeOfDay := ap.AppointmentTime
	if in.Time != nil {
		timeOfDay = *in.Time
	}
	roomID := ap.RoomID
	if in.RoomID != nil {
		roomID = normalizeRoomID(in.RoomID)
	}

	doctorMoved := in.DoctorID != nil || in.Date != nil || in.Time != nil
	roomMoved := in.RoomID != nil || in.Date != nil || in.Time != nil

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		if doctorMoved {
			conflict, err := tx.HasDoctorConflict(ctx, doctorID, date, timeOfDay, ap.ID)
			if err != nil {
				return err
			}
			if conflict {
				return httperr.ConflictErr("doctor_double_booked")
			}
		}

		if roomMoved && roomID != nil {
			conflict, err := tx.HasRoomConflict(ctx, *roomID, date, timeOfDay, ap.ID)
			if err != nil {
				return err
			}
			if conflict {
				return httperr.ConflictErr("room_double_booked")
			}
		}

		applyChanges(ap, in, doctorID, date, timeOfDay, roomID)

		return tx.UpdateAppointment(ctx, ap)
	})

	if err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ConflictErr("time_conflict")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.RequestedBy,
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func (uc *UpdateAppointment) checkChangedReferences(
	ctx context.Context,
	in UpdateAppointmentInput,
) error {

	if in.PatientID != nil {
		if _, err := uc.repo.GetPatient(ctx, *in.PatientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.NotFoundErr("patient_not_found")
			}
			return err
		}
	}

	if in.DoctorID != nil {
		doctor, err := uc.repo.GetDoctor(ctx, *in.DoctorID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.NotFoundErr("doctor_not_found")
			}
			return err
		}
		if !doctor.IsActive {
			return httperr.InactiveErr("doctor_inactive")
		}
	}

	if in.RoomID != nil && *in.RoomID != "" {
		room, err := uc.repo.GetRoom(ctx, *in.RoomID)
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

	if in.AppointmentTypeID != nil {
		if _, err := uc.repo.GetAppointmentType(ctx, *in.AppointmentTypeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.NotFoundErr("appointment_type_not_found")
			}
			return err
		}
	}

	return nil
}

func applyChanges(
	ap *models.Appointment,
	in UpdateAppointmentInput,
	doctorID string,
	date string,
	timeOfDay string,
	roomID *string,
) {
	if in.PatientID != nil {
		ap.PatientID = *in.PatientID
	}
	ap.DoctorID = doctorID
	ap.AppointmentDate = date
	ap.AppointmentTime = timeOfDay
	ap.RoomID = roomID
	if in.AppointmentTypeID != nil {
		ap.AppointmentTypeID = *in.AppointmentTypeID
	}
	if in.Status != nil {
		ap.Status = *in.Status
	}
	if in.Reason != nil {
		ap.Reason = *in.Reason
	}
	if in.Notes != nil {
		ap.Notes = *in.Notes
	}
}
