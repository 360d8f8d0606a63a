package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/config"
	"github.com/orthoflow/clinic-api/internal/models"
)

func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.InsurancePlan{},
		&models.Doctor{},
		&models.Patient{},
		&models.ClinicRoom{},
		&models.AppointmentType{},
		&models.Appointment{},
		&models.PasswordResetToken{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	if err := createIndexes(db); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	return db
}

// createIndexes adds the partial unique indexes that back the double-booking
// checks. The application also searches for conflicts inside the booking
// transaction, but two concurrent bookings can both pass that search; the
// index makes the slower one fail with a unique violation.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_doctor_slot
			ON appointments (doctor_id, appointment_date, appointment_time)
			WHERE status IN ('scheduled', 'confirmed')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_room_slot
			ON appointments (room_id, appointment_date, appointment_time)
			WHERE room_id IS NOT NULL AND status IN ('scheduled', 'confirmed')`,
		`CREATE INDEX IF NOT EXISTS idx_reset_tokens_user_live
			ON password_reset_tokens (user_id, expires_at)
			WHERE used = false`,
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
