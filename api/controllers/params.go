package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/api/middleware"
	"github.com/watchengine/watch-engine-backend/api/validators"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

func requireUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
