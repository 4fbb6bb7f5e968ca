package models

import "time"

// Brand mirrors a catalog make. IDs are the catalog's makeId values.
type Brand struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
