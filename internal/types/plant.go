package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlantStatusHealthy        = "healthy"
	PlantStatusNeedsCare      = "needs_care"
	PlantStatusNeedsAttention = "needs_attention"
)

const (
	LightRequirementLow    = "low"
	LightRequirementMedium = "medium"
	LightRequirementHigh   = "high"
)

type Plant struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User               *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name               string     `gorm:"column:name;not null" json:"name"`
	Species            string     `gorm:"column:species" json:"species"`
	ImageURL           string     `gorm:"column:image_url" json:"image_url"`
	AcquiredAt         *time.Time `gorm:"column:acquired_at" json:"acquired_at,omitempty"`
	Status             string     `gorm:"column:status;not null;default:'healthy'" json:"status"`
	LastWatered        *time.Time `gorm:"column:last_watered" json:"last_watered,omitempty"`
	WaterFrequencyDays int        `gorm:"column:water_frequency_days;not null;default:0" json:"water_frequency_days"`
	LightRequirement   string     `gorm:"column:light_requirement;not null;default:'medium'" json:"light_requirement"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Plant) TableName() string { return "plant" }

func ValidLightRequirement(lr string) bool {
	switch lr {
	case LightRequirementLow, LightRequirementMedium, LightRequirementHigh:
		return true
	}
	return false
}
