package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SpeciesProfile caches the external plant-database lookup for one plant.
// Rows older than the configured freshness window get re-synced on read.
type SpeciesProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"plant_id"`
	Plant          *Plant         `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	ScientificName string         `gorm:"column:scientific_name" json:"scientific_name"`
	CommonName     string         `gorm:"column:common_name" json:"common_name"`
	CareSummary    string         `gorm:"column:care_summary" json:"care_summary"`
	Taxonomy       datatypes.JSON `gorm:"column:taxonomy;type:jsonb" json:"taxonomy"`
	SyncedAt       time.Time      `gorm:"column:synced_at;not null" json:"synced_at"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (SpeciesProfile) TableName() string { return "species_profile" }
