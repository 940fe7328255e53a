package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	LightLevelLow    = "low"
	LightLevelMedium = "medium"
	LightLevelHigh   = "high"
)

// EnvironmentReading rows are append-only; the latest row per user is the
// "current" reading the recommendation engine works from.
type EnvironmentReading struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Temperature  float64   `gorm:"column:temperature" json:"temperature"`
	Humidity     float64   `gorm:"column:humidity" json:"humidity"`
	LightLevel   string    `gorm:"column:light_level" json:"light_level"`
	SoilMoisture float64   `gorm:"column:soil_moisture" json:"soil_moisture"`
	RecordedAt   time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (EnvironmentReading) TableName() string { return "environment_reading" }
