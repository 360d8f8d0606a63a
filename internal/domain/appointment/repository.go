package appointment

import (
	"context"
	"errors"

	"github.com/orthoflow/clinic-api/internal/models"
)

// ErrNotFound is returned by lookups when the record does not exist, so use
// cases can tell a missing reference from a storage failure.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	// -------- Referenced entities --------
	GetPatient(ctx context.Context, id string) (*models.Patient, error)

	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)

	GetRoom(ctx context.Context, id string) (*models.ClinicRoom, error)

	GetAppointmentType(ctx context.Context, id string) (*models.AppointmentType, error)

	// -------- Appointment --------
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)

	CreateAppointment(ctx context.Context, ap *models.Appointment) error

	UpdateAppointment(ctx context.Context, ap *models.Appointment) error

	// HasDoctorConflict reports whether the doctor already holds the
	// (date, time) slot with an active-status appointment other than excludeID.
	HasDoctorConflict(
		ctx context.Context,
		doctorID string,
		date string,
		timeOfDay string,
		excludeID string,
	) (bool, error)

	HasRoomConflict(
		ctx context.Context,
		roomID string,
		date string,
		timeOfDay string,
		excludeID string,
	) (bool, error)

	// Transaction runs fn against a repository bound to a single transaction;
	// any error rolls the whole sequence back.
	Transaction(ctx context.Context, fn func(Repository) error) error
}
