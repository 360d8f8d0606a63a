package appointment

import (
	"context"
	"fmt"

	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/models"
)

// fakeRepo is an in-memory Repository backed by maps; conflict search scans
// the stored appointments the same way the SQL does.
type fakeRepo struct {
	patients map[string]*models.Patient
	doctors  map[string]*models.Doctor
	rooms    map[string]*models.ClinicRoom
	types    map[string]*models.AppointmentType

	appointments map[string]*models.Appointment
	nextID       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients:     map[string]*models.Patient{},
		doctors:      map[string]*models.Doctor{},
		rooms:        map[string]*models.ClinicRoom{},
		types:        map[string]*models.AppointmentType{},
		appointments: map[string]*models.Appointment{},
	}
}

func (f *fakeRepo) seedPatient(id string) {
	f.patients[id] = &models.Patient{ID: id}
}

func (f *fakeRepo) seedDoctor(id string, active bool) {
	f.doctors[id] = &models.Doctor{ID: id, IsActive: active}
}

func (f *fakeRepo) seedRoom(id string, available bool) {
	f.rooms[id] = &models.ClinicRoom{ID: id, IsAvailable: available}
}

func (f *fakeRepo) seedType(id string) {
	f.types[id] = &models.AppointmentType{ID: id, IsActive: true}
}

func (f *fakeRepo) GetPatient(_ context.Context, id string) (*models.Patient, error) {
	if p, ok := f.patients[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) GetDoctor(_ context.Context, id string) (*models.Doctor, error) {
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) GetRoom(_ context.Context, id string) (*models.ClinicRoom, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) GetAppointmentType(_ context.Context, id string) (*models.AppointmentType, error) {
	if t, ok := f.types[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	if ap, ok := f.appointments[id]; ok {
		copied := *ap
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if ap.ID == "" {
		f.nextID++
		ap.ID = fmt.Sprintf("ap-%d", f.nextID)
	}
	stored := *ap
	f.appointments[ap.ID] = &stored
	return nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if _, ok := f.appointments[ap.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *ap
	f.appointments[ap.ID] = &stored
	return nil
}

func (f *fakeRepo) HasDoctorConflict(
	_ context.Context,
	doctorID, date, timeOfDay, excludeID string,
) (bool, error) {
	for _, ap := range f.appointments {
		if ap.ID == excludeID {
			continue
		}
		if ap.DoctorID == doctorID &&
			ap.AppointmentDate == date &&
			ap.AppointmentTime == timeOfDay &&
			isActiveStatus(ap.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) HasRoomConflict(
	_ context.Context,
	roomID, date, timeOfDay, excludeID string,
) (bool, error) {
	for _, ap := range f.appointments {
		if ap.ID == excludeID {
			continue
		}
		if ap.RoomID != nil && *ap.RoomID == roomID &&
			ap.AppointmentDate == date &&
			ap.AppointmentTime == timeOfDay &&
			isActiveStatus(ap.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Transaction(_ context.Context, fn func(domain.Repository) error) error {
	return fn(f)
}

func isActiveStatus(status string) bool {
	for _, s := range domain.ActiveStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
