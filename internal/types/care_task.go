package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskTypeWater     = "water"
	TaskTypePrune     = "prune"
	TaskTypeFertilize = "fertilize"
	TaskTypeLight     = "light"
)

// CareTask is pending until it is either completed or skipped, both terminal.
type CareTask struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"plant_id"`
	Plant         *Plant     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	TaskType      string     `gorm:"column:task_type;not null" json:"task_type"`
	DueDate       time.Time  `gorm:"column:due_date;not null;index" json:"due_date"`
	Completed     bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedDate *time.Time `gorm:"column:completed_date" json:"completed_date,omitempty"`
	Skipped       bool       `gorm:"column:skipped;not null;default:false" json:"skipped"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (CareTask) TableName() string { return "care_task" }

func ValidTaskType(tt string) bool {
	switch tt {
	case TaskTypeWater, TaskTypePrune, TaskTypeFertilize, TaskTypeLight:
		return true
	}
	return false
}
