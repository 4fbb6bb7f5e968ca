package favorites

import (
	"time"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/internal/watches"
)

// FavoriteDTO wraps the watch summary included in a favorites row.
type FavoriteDTO struct {
	ID          uuid.UUID        `json:"id"`
	Watch       watches.WatchDTO `json:"watch"`
	FavoritedAt time.Time        `json:"favorited_at"`
}

// IDsDTO is the lightweight projection used by clients to paint heart icons.
type IDsDTO struct {
	WatchIDs []uuid.UUID `json:"watch_ids"`
}

// StatusDTO answers the single-watch membership and toggle calls.
type StatusDTO struct {
	WatchID  uuid.UUID `json:"watch_id"`
	Favorite bool      `json:"favorite"`
}
