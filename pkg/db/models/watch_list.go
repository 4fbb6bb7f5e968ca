package models

import (
	"time"

	"github.com/google/uuid"
)

type WatchList struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type WatchListItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListID    uuid.UUID `gorm:"column:list_id;type:uuid;not null;uniqueIndex:watch_list_items_list_watch_key"`
	WatchID   uuid.UUID `gorm:"column:watch_id;type:uuid;not null;uniqueIndex:watch_list_items_list_watch_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
