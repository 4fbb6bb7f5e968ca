package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	"github.com/watchengine/watch-engine-backend/internal/favorites"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// favoriteTarget resolves the caller and the {watchId} path parameter.
func favoriteTarget(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := requireUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	watchID, err := validators.ParseUUIDParam(r, "watchId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, watchID, nil
}

// FavoritesList returns the caller's favorites with watch summaries.
func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// FavoritesIDs returns only the favorited watch ids.
func FavoritesIDs(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ids, err := svc.IDs(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ids)
	}
}

func FavoriteStatus(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, watchID, err := favoriteTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := svc.Is(ctx, userID, watchID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// FavoriteAdd is idempotent; repeating it keeps a single row.
func FavoriteAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, watchID, err := favoriteTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := svc.Add(ctx, userID, watchID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func FavoriteRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, watchID, err := favoriteTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, userID, watchID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, favorites.StatusDTO{WatchID: watchID, Favorite: false})
	}
}

func FavoriteToggle(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("favorites"))
			return
		}
		userID, watchID, err := favoriteTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := svc.Toggle(ctx, userID, watchID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
