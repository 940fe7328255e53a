package types

import (
	"time"

	"github.com/google/uuid"
)

// PlantHealthMetric is one row per plant, upserted on every watering-state
// change. All three scores are clamped to [0,100].
type PlantHealthMetric struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"plant_id"`
	Plant         *Plant    `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	WaterLevel    int       `gorm:"column:water_level;not null;default:0" json:"water_level"`
	LightLevel    int       `gorm:"column:light_level;not null;default:0" json:"light_level"`
	OverallHealth int       `gorm:"column:overall_health;not null;default:0" json:"overall_health"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (PlantHealthMetric) TableName() string { return "plant_health_metric" }
