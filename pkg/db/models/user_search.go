package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSearch counts the searches a user ran on a UTC calendar day.
type UserSearch struct {
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	SearchDate  time.Time `gorm:"column:search_date;type:date;primaryKey"`
	SearchCount int       `gorm:"column:search_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
