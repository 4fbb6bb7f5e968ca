package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	"github.com/watchengine/watch-engine-backend/internal/watchlists"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

type createListRequest struct {
	Name    string     `json:"name" validate:"notblank,max=100"`
	WatchID *uuid.UUID `json:"watch_id"`
}

type renameListRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

type addListItemRequest struct {
	WatchID uuid.UUID `json:"watch_id" validate:"required"`
}

func listTarget(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := requireUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	listID, err := validators.ParseUUIDParam(r, "listId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, listID, nil
}

func WatchListsIndex(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		lists, err := svc.Lists(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, lists)
	}
}

// WatchListCreate creates a named list, optionally seeded with one watch.
func WatchListCreate(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body createListRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.Create(ctx, userID, watchlists.CreateListInput{Name: body.Name, WatchID: body.WatchID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, list)
	}
}

func WatchListRename(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, listID, err := listTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body renameListRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.Rename(ctx, userID, listID, body.Name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func WatchListDelete(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, listID, err := listTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, userID, listID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func WatchListItems(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, listID, err := listTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.Items(ctx, userID, listID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func WatchListAddItem(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, listID, err := listTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body addListItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.AddItem(ctx, userID, listID, body.WatchID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"list_id": listID, "watch_id": body.WatchID})
	}
}

func WatchListRemoveItem(svc watchlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch list"))
			return
		}
		userID, listID, err := listTarget(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		watchID, err := validators.ParseUUIDParam(r, "watchId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveItem(ctx, userID, listID, watchID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
