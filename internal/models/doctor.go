package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Doctor struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	FirstName     string `gorm:"size:100;not null" json:"first_name"`
	LastName      string `gorm:"size:100;not null" json:"last_name"`
	Specialty     string `gorm:"size:100;not null" json:"specialty"`
	LicenseNumber string `gorm:"size:50;uniqueIndex;not null" json:"license_number"`
	Phone         string `gorm:"size:20;not null" json:"phone"`
	Email         string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
