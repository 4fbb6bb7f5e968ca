package middleware

import (
	"context"

	"github.com/google/uuid"
)

type (
	identityKey  struct{}
	requestIDKey struct{}
)

// Identity is what Auth and OptionalAuth learn from a verified access token.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	AccessID string
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != uuid.Nil
}

// WithUserID is a shorthand for tests and internal callers that only know the user.
func WithUserID(ctx context.Context, userID string) context.Context {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return ctx
	}
	return WithIdentity(ctx, Identity{UserID: parsed})
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID.String()
	}
	return ""
}

func UserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

func EmailFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Email
}

// AccessIDFromContext returns the jti of the presented access token.
func AccessIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.AccessID
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
