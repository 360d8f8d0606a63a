package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClinicRoom struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	RoomNumber string `gorm:"size:20;uniqueIndex;not null" json:"room_number"`
	RoomType   string `gorm:"size:50;not null" json:"room_type"`
	Capacity   string `gorm:"size:20;not null" json:"capacity"`
	Equipment  string `gorm:"type:text" json:"equipment"`

	IsAvailable bool `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ClinicRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
