package watchlists

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/internal/watches"
)

const maxNameLength = 100

// ListDTO is a watch list with its item count.
type ListDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemDTO is one watch saved in a list.
type ItemDTO struct {
	ID      uuid.UUID        `json:"id"`
	Watch   watches.WatchDTO `json:"watch"`
	AddedAt time.Time        `json:"added_at"`
}

// CreateListInput names a new list and optionally seeds it with a watch.
type CreateListInput struct {
	Name    string
	WatchID *uuid.UUID
}
