package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecommendationTypeWater   = "water"
	RecommendationTypeLight   = "light"
	RecommendationTypePruning = "pruning"
)

type Recommendation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User               *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PlantID            *uuid.UUID `gorm:"type:uuid;index" json:"plant_id,omitempty"`
	Plant              *Plant     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	RecommendationType string     `gorm:"column:recommendation_type;not null" json:"recommendation_type"`
	Message            string     `gorm:"column:message;not null" json:"message"`
	Applied            bool       `gorm:"column:applied;not null;default:false" json:"applied"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Recommendation) TableName() string { return "recommendation" }
