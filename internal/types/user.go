package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalAuthID string    `gorm:"uniqueIndex;not null;column:external_auth_id" json:"external_auth_id"`
	Username       string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email          string    `gorm:"column:email" json:"email"`
	DisplayName    string    `gorm:"column:display_name" json:"display_name"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }
