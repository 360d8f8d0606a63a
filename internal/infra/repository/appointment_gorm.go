package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Referenced entities
// --------------------------------------------------

func (r *AppointmentGormRepository) GetPatient(
	ctx context.Context,
	id string,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (r *AppointmentGormRepository) GetDoctor(
	ctx context.Context,
	id string,
) (*models.Doctor, error) {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doctor, nil
}

func (r *AppointmentGormRepository) GetRoom(
	ctx context.Context,
	id string,
) (*models.ClinicRoom, error) {

	var room models.ClinicRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *AppointmentGormRepository) GetAppointmentType(
	ctx context.Context,
	id string,
) (*models.AppointmentType, error) {

	var apType models.AppointmentType
	if err := r.db.WithContext(ctx).First(&apType, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &apType, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Preload("Room").
		Preload("AppointmentType").
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Conflict search
// --------------------------------------------------

func (r *AppointmentGormRepository) HasDoctorConflict(
	ctx context.Context,
	doctorID string,
	date string,
	timeOfDay string,
	excludeID string,
) (bool, error) {

	return r.hasSlotConflict(ctx, "doctor_id", doctorID, date, timeOfDay, excludeID)
}

func (r *AppointmentGormRepository) HasRoomConflict(
	ctx context.Context,
	roomID string,
	date string,
	timeOfDay string,
	excludeID string,
) (bool, error) {

	return r.hasSlotConflict(ctx, "room_id", roomID, date, timeOfDay, excludeID)
}

// hasSlotConflict counts active-status holders of the slot. Postgres rejects
// FOR UPDATE on an aggregate, so the search takes no row locks; a racer that
// slips past it fails on the partial unique indexes over the slot columns.
func (r *AppointmentGormRepository) hasSlotConflict(
	ctx context.Context,
	column string,
	holderID string,
	date string,
	timeOfDay string,
	excludeID string,
) (bool, error) {

	var count int64
	err := slotConflictQuery(
		r.db.WithContext(ctx), column, holderID, date, timeOfDay, excludeID,
	).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func slotConflictQuery(
	db *gorm.DB,
	column string,
	holderID string,
	date string,
	timeOfDay string,
	excludeID string,
) *gorm.DB {

	q := db.Model(&models.Appointment{}).
		Where(
			column+" = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
			holderID, date, timeOfDay, domain.ActiveStatuses(),
		)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
