package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsurancePlan struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	PlanName     string `gorm:"size:100;not null" json:"plan_name"`
	Provider     string `gorm:"size:100;not null" json:"provider"`
	CoverageType string `gorm:"size:50;not null" json:"coverage_type"`

	CopayAmount      *float64 `json:"copay_amount"`
	DeductibleAmount *float64 `json:"deductible_amount"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *InsurancePlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
