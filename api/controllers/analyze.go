package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	"github.com/watchengine/watch-engine-backend/internal/analyzer"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

type analyzeRequest struct {
	Query json.RawMessage `json:"query"`
}

// AnalyzeQuery extracts structured criteria from a free-text query.
func AnalyzeQuery(svc analyzer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("analyzer"))
			return
		}

		var body analyzeRequest
		if err := validators.DecodeLooseJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid query parameter"))
			return
		}

		var query string
		if len(body.Query) == 0 || json.Unmarshal(body.Query, &query) != nil || strings.TrimSpace(query) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid query parameter"))
			return
		}

		result, err := svc.Analyze(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
