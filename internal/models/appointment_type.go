package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentType struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	TypeName    string `gorm:"size:100;uniqueIndex;not null" json:"type_name"`
	Duration    string `gorm:"size:20;not null" json:"duration"`
	Description string `gorm:"type:text" json:"description"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *AppointmentType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
