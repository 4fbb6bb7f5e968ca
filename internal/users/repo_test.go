package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/pkg/db"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	name := "  Ada  "
	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        " Ada@Example.com ",
		PasswordHash: "hash",
		DisplayName:  &name,
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", created.Email)
	require.NotNil(t, created.DisplayName)
	require.Equal(t, "Ada", *created.DisplayName)
	require.True(t, created.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, byID.Email)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "ada@example.com", PasswordHash: "other"})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryRecordLogin(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "grace@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, created.ID, at, ""))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, reloaded.LastLoginAt.Equal(at))
	require.Equal(t, "hash", reloaded.PasswordHash)

	require.NoError(t, repo.RecordLogin(ctx, created.ID, at.Add(time.Hour), "rehashed"))
	reloaded, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "rehashed", reloaded.PasswordHash)
}

func TestFromModelNil(t *testing.T) {
	require.Nil(t, FromModel(nil))
}
