package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	FirstName   string `gorm:"size:100;not null" json:"first_name"`
	LastName    string `gorm:"size:100;not null" json:"last_name"`
	CPF         string `gorm:"size:11;uniqueIndex;not null" json:"cpf"`
	DateOfBirth string `gorm:"size:10;not null" json:"date_of_birth"`
	Phone       string `gorm:"size:20;not null" json:"phone"`
	Email       string `gorm:"size:100" json:"email"`
	Address     string `gorm:"type:text;not null" json:"address"`

	EmergencyContact string `gorm:"size:100;not null" json:"emergency_contact"`
	EmergencyPhone   string `gorm:"size:20;not null" json:"emergency_phone"`

	MedicalHistory string `gorm:"type:text" json:"medical_history"`
	Allergies      string `gorm:"type:text" json:"allergies"`

	InsurancePlanID *string        `gorm:"type:varchar(36)" json:"insurance_plan_id"`
	InsurancePlan   *InsurancePlan `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"insurance_plan,omitempty"`
	InsuranceNumber string         `gorm:"size:50" json:"insurance_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
