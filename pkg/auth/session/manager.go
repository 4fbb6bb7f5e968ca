package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/watchengine/watch-engine-backend/pkg/config"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

// Backend is the key/value surface the manager needs. *redis.Client satisfies it.
type Backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager binds an access token jti to a refresh token digest. The raw
// refresh token is only ever held by the client. A missing binding means
// the session was revoked or already rotated.
type Manager struct {
	backend Backend
	ttl     time.Duration
}

func NewManager(backend Backend, cfg config.JWTConfig) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("session backend is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, errors.New("refresh token ttl must be positive")
	}
	if accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute; ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{backend: backend, ttl: ttl}, nil
}

// TTL reports how long a refresh token stays valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate issues a refresh token for accessID and records its digest.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if blank(accessID) {
		return "", errMissingAccessID
	}
	return m.issue(ctx, accessID)
}

// Rotate consumes the binding for oldAccessID and issues a fresh pair. The
// old binding is removed before the comparison, so a refresh token can be
// presented at most once even when the comparison fails.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if blank(oldAccessID) || blank(provided) {
		return "", "", ErrInvalidRefreshToken
	}

	stored, err := m.backend.GetDel(ctx, m.backend.AccessSessionKey(oldAccessID))
	if errors.Is(err, redislib.Nil) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.issue(ctx, accessID)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

// Revoke drops the binding for accessID. Revoking an unknown id is a no-op.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errMissingAccessID
	}
	return m.backend.Del(ctx, m.backend.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live refresh binding.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errMissingAccessID
	}
	n, err := m.backend.Exists(ctx, m.backend.AccessSessionKey(accessID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NewAccessID returns the identifier used as the JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) issue(ctx context.Context, accessID string) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := m.backend.Set(ctx, m.backend.AccessSessionKey(accessID), digest(token), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
