package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/internal/users"
	pkgAuth "github.com/watchengine/watch-engine-backend/pkg/auth"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "watch-engine",
	ExpirationMinutes: 30,
}

func TestServiceLoginIssuesTokens(t *testing.T) {
	password := "correct-horse"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "collector@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
	repo := newStubUserRepo(user)
	svc, sessions := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Collector@Example.com ", Password: password})
	require.NoError(t, err)
	require.Equal(t, "refresh-token", resp.RefreshToken)
	require.Equal(t, user.ID, resp.User.ID)
	require.NotNil(t, user.LastLoginAt)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "collector@example.com", claims.Email)
	require.Equal(t, []string{claims.ID}, sessions.generated)
}

func TestServiceLoginUpgradesStaleHash(t *testing.T) {
	stale, err := security.HashPassword("correct-horse", config.PasswordConfig{ArgonTime: 1, ArgonMemoryKB: 8192})
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "collector@example.com", PasswordHash: stale, IsActive: true}
	repo := newStubUserRepo(user)
	svc, _ := buildTestService(t, repo)

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, 1, repo.rehashed)
	require.NotEqual(t, stale, user.PasswordHash)
	require.False(t, security.NeedsRehash(user.PasswordHash, config.PasswordConfig{}))

	ok, err := security.VerifyPassword("correct-horse", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, 1, repo.rehashed)
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "collector@example.com",
		PasswordHash: mustHashPassword(t, "correct-horse"),
		IsActive:     true,
	}

	cases := map[string]LoginRequest{
		"wrong password": {Email: user.Email, Password: "battery-staple"},
		"unknown email":  {Email: "nobody@example.com", Password: "correct-horse"},
		"blank email":    {Email: "  ", Password: "correct-horse"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := buildTestService(t, newStubUserRepo(user))
			_, err := svc.Login(context.Background(), req)
			require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
		})
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: mustHashPassword(t, "correct-horse"),
		IsActive:     false,
	}
	svc, _ := buildTestService(t, newStubUserRepo(user))

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestServiceRegisterCreatesAndSignsIn(t *testing.T) {
	repo := newStubUserRepo()
	svc, sessions := buildTestService(t, repo)

	name := "Ada"
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "Ada@Example.com",
		Password:    "long-enough",
		DisplayName: &name,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Len(t, sessions.generated, 1)

	stored := repo.data["ada@example.com"]
	require.NotNil(t, stored)
	ok, err := security.VerifyPassword("long-enough", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestServiceRegisterConflictsOnExistingEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "ada@example.com", IsActive: true}
	svc, _ := buildTestService(t, newStubUserRepo(existing))

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "long-enough"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestServiceRegisterMapsUniqueViolationRace(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)
	svc, _ := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "long-enough"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestServiceRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := buildTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "short"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func buildTestService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)
	return svc, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return hash
}

type stubUserRepo struct {
	data      map[string]*models.User
	createErr error
	rehashed  int
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{data: map[string]*models.User{}}
	for _, u := range seed {
		repo.data[u.Email] = u
	}
	return repo
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	s.data[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, passwordHash string) error {
	for _, user := range s.data {
		if user.ID == id {
			user.LastLoginAt = &at
			if passwordHash != "" {
				user.PasswordHash = passwordHash
				s.rehashed++
			}
		}
	}
	return nil
}

type stubSessionManager struct {
	refreshToken string
	generated    []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return s.refreshToken, nil
}
