package types

import (
	"time"

	"github.com/google/uuid"
)

// CareHistory is an append-only audit log of everything done to a plant.
type CareHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"plant_id"`
	Plant       *Plant    `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	ActionType  string    `gorm:"column:action_type;not null" json:"action_type"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	PerformedAt time.Time `gorm:"column:performed_at;not null;index" json:"performed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (CareHistory) TableName() string { return "care_history" }
