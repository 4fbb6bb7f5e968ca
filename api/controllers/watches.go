package controllers

import (
	"net/http"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	"github.com/watchengine/watch-engine-backend/internal/brands"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// WatchGet returns one catalog watch.
func WatchGet(svc watches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "watchId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		watch, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, watch)
	}
}

// BrandWatches pages through the watches of one brand, newest first.
func BrandWatches(svc watches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("watch"))
			return
		}

		brandID, err := validators.ParseInt64Param(r, "brandId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListByBrand(ctx, brandID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// BrandDirectory lists brands grouped by initial, optionally filtered by q.
func BrandDirectory(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("brand"))
			return
		}

		dir, err := svc.Directory(ctx, validators.SanitizeString(r.URL.Query().Get("q"), 100))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dir)
	}
}

func BrandGet(svc brands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("brand"))
			return
		}

		id, err := validators.ParseInt64Param(r, "brandId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		brand, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, brand)
	}
}
