package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/watchengine/watch-engine-backend/pkg/config"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string]string)}
}

func (m *memoryBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryBackend) GetDel(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	delete(m.data, key)
	return val, nil
}

func (m *memoryBackend) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return n, nil
}

func (m *memoryBackend) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryBackend) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(backend *memoryBackend) *Manager {
	return &Manager{backend: backend, ttl: time.Hour}
}

func TestGenerateStoresDigestOnly(t *testing.T) {
	backend := newMemoryBackend()
	manager := newTestManager(backend)

	token, err := manager.Generate(context.Background(), "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored := backend.data[backend.AccessSessionKey("access-123")]
	if stored == token {
		t.Fatal("raw refresh token must not be persisted")
	}
	if stored != digest(token) {
		t.Fatalf("expected digest %q, got %q", digest(token), stored)
	}
	if _, err := manager.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected blank access id to fail")
	}
}

func TestRotateIssuesNewPair(t *testing.T) {
	backend := newMemoryBackend()
	manager := newTestManager(backend)
	ctx := context.Background()

	token, err := manager.Generate(ctx, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, "access-123", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == "access-123" || newToken == token {
		t.Fatal("rotation must produce a new pair")
	}
	if _, exists := backend.data[backend.AccessSessionKey("access-123")]; exists {
		t.Fatal("old binding left behind")
	}
	ok, err := manager.HasSession(ctx, newAccessID)
	if err != nil || !ok {
		t.Fatalf("expected new session to be live, ok=%v err=%v", ok, err)
	}
}

func TestRotateIsSingleUse(t *testing.T) {
	backend := newMemoryBackend()
	manager := newTestManager(backend)
	ctx := context.Background()

	token, err := manager.Generate(ctx, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "access-123", token); err != nil {
		t.Fatalf("first rotate: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "access-123", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed refresh token should fail, got %v", err)
	}
}

func TestRotateWithWrongTokenBurnsSession(t *testing.T) {
	backend := newMemoryBackend()
	manager := newTestManager(backend)
	ctx := context.Background()

	token, err := manager.Generate(ctx, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "access-123", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "access-123", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("session should be gone after a failed attempt, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("blank access id should be rejected, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	backend := newMemoryBackend()
	manager := newTestManager(backend)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "jti-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	ok, err := manager.HasSession(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, "jti-1")
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("second revoke should be a no-op, got %v", err)
	}
	if _, err := manager.HasSession(ctx, " "); err == nil {
		t.Fatal("expected blank access id to error")
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	backend := newMemoryBackend()
	if _, err := NewManager(nil, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60}); err == nil {
		t.Fatal("expected nil backend to fail")
	}
	if _, err := NewManager(backend, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected refresh ttl shorter than access ttl to fail")
	}
	manager, err := NewManager(backend, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if manager.TTL() != time.Hour {
		t.Fatalf("unexpected ttl %s", manager.TTL())
	}
}
