package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/watchengine/watch-engine-backend/api/middleware"
	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	"github.com/watchengine/watch-engine-backend/internal/criteria"
	"github.com/watchengine/watch-engine-backend/internal/quota"
	"github.com/watchengine/watch-engine-backend/internal/search"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

type searchRequest struct {
	Criteria json.RawMessage `json:"criteria"`
	Query    string          `json:"query"`
	Provider string          `json:"provider"`
	Limit    int             `json:"limit" validate:"gte=0,lte=100"`
}

// SearchWatches routes a criteria search to the requested provider. The
// caller is optional; authenticated callers spend their daily allowance.
func SearchWatches(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("search"))
			return
		}

		var body searchRequest
		if err := validators.DecodeLooseJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		raw := bytes.TrimSpace(body.Criteria)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid criteria parameter"))
			return
		}
		var c criteria.Criteria
		if err := json.Unmarshal(raw, &c); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid criteria parameter"))
			return
		}

		req := search.Request{
			Criteria: c,
			Query:    strings.TrimSpace(body.Query),
			Provider: body.Provider,
			Limit:    body.Limit,
		}
		if userID, ok := middleware.UserUUIDFromContext(ctx); ok {
			req.UserID = &userID
		}

		result, err := svc.Search(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SearchQuota reports today's usage of the caller's daily search allowance.
func SearchQuota(svc quota.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("quota"))
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := svc.Status(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
