package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeUpstream, status: http.StatusInternalServerError, publicMsg: "upstream request failed", retryable: true, detailsOK: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detailed := base.WithDetails(map[string]any{"field": "foo"})
	if detailed.Details() == nil {
		t.Fatalf("details should be attached to the copy")
	}
	if base.Details() != nil {
		t.Fatalf("WithDetails must not mutate the receiver")
	}
	if detailed.Code() != CodeValidation || detailed.Message() != "missing foo" {
		t.Fatalf("copy lost code or message: %v", detailed)
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestCodeOfAndCause(t *testing.T) {
	cause := stdErrors.New("dial tcp: refused")
	wrapped := fmt.Errorf("search: %w", Wrap(CodeDependency, cause, "database unavailable"))

	if got := CodeOf(wrapped); got != CodeDependency {
		t.Fatalf("expected dependency code, got %s", got)
	}
	if got := As(wrapped).Cause(); got != "dial tcp: refused" {
		t.Fatalf("unexpected cause %q", got)
	}
	if got := CodeOf(stdErrors.New("plain")); got != CodeInternal {
		t.Fatalf("plain errors should map to internal, got %s", got)
	}
	if New(CodeNotFound, "x").Cause() != "" {
		t.Fatalf("errors without cause should report empty cause")
	}
}

func TestErrorTextAndHasCode(t *testing.T) {
	plain := Newf(CodeNotFound, "watch %d missing", 7)
	if plain.Error() != "NOT_FOUND: watch 7 missing" {
		t.Fatalf("unexpected text %q", plain.Error())
	}
	wrapped := Wrap(CodeUpstream, stdErrors.New("timeout"), "catalog search")
	if wrapped.Error() != "UPSTREAM_ERROR: catalog search: timeout" {
		t.Fatalf("unexpected text %q", wrapped.Error())
	}

	chained := fmt.Errorf("provider: %w", wrapped)
	if !HasCode(chained, CodeUpstream) {
		t.Fatal("expected upstream code in chain")
	}
	if HasCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatal("untyped errors carry no code")
	}
}

func TestDumpCollectsChainAndPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "favorites_user_watch_key", TableName: "favorites", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert favorite: %w", pgErr), "already a favorite")

	dump := Dump(err)
	require.Equal(t, CodeConflict, dump.Code)
	require.Len(t, dump.Chain, 3)
	require.NotNil(t, dump.PG)
	require.Equal(t, "favorites_user_watch_key", dump.PG.Constraint)

	fields := dump.Fields()
	require.Equal(t, "23505", fields["pg_code"])
	require.Equal(t, "favorites", fields["pg_table"])
}

func TestDumpWithoutPostgresError(t *testing.T) {
	dump := Dump(stdErrors.New("plain"))
	require.Nil(t, dump.PG)
	require.Equal(t, CodeInternal, dump.Code)
	require.NotContains(t, dump.Fields(), "pg_code")
	require.Equal(t, ErrorDump{}, Dump(nil))
}
