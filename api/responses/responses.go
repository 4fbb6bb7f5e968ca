// Package responses writes the JSON envelopes every endpoint shares:
// {"success":true,"data":...} and {"success":false,"code":...,"message":...}.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/types"
)

// fallbackBody is sent when an envelope cannot be encoded.
const fallbackBody = `{"success":false,"code":"INTERNAL_ERROR","message":"internal server error"}`

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Success: true, Data: data})
}

// WriteError maps err to its code's status and public message. Untyped
// errors become INTERNAL_ERROR and never leak their text. Causes and
// details are only exposed for codes whose metadata allows it.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	trusted := typed != nil
	if !trusted {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	envelope := types.ErrorEnvelope{
		Code:    string(typed.Code()),
		Message: meta.PublicMessage,
	}
	if m := typed.Message(); trusted && m != "" {
		envelope.Message = m
	}
	if meta.DetailsAllowed {
		envelope.Error = typed.Cause()
		envelope.Details = typed.Details()
	}

	logFailure(ctx, logg, err, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, envelope)
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, status int) {
	if logg == nil {
		return
	}
	fields := pkgerrors.Dump(err).Fields()
	fields["http_status"] = status
	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

// writeJSON encodes before touching the response so an encoding failure
// still produces a well formed 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallbackBody + "\n"))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
