package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	// JTI doubles as the redis session key; one is generated when empty.
	JTI string
}

// AccessTokenClaims is the body of every access token. Subject repeats
// UserID so generic JWT tooling can identify the caller.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims pass.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token has no user id")
	}
	if c.Subject != "" && c.Subject != c.UserID.String() {
		return errors.New("token subject does not match user id")
	}
	return nil
}
