package favorites

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

func setupFavoritesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS watches (
  id TEXT PRIMARY KEY,
  external_id TEXT,
  reference TEXT,
  brand_id INTEGER,
  model_name TEXT NOT NULL,
  family_name TEXT,
  movement_name TEXT,
  function_name TEXT,
  year_produced TEXT,
  limited_edition INTEGER NOT NULL DEFAULT 0,
  price_eur NUMERIC,
  image_url TEXT,
  image_filename TEXT,
  description TEXT,
  dial_color TEXT,
  raw_data TEXT,
  source TEXT NOT NULL,
  embedding TEXT,
  created_at DATETIME,
  last_updated DATETIME
);`).Error)
	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS favorites (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  watch_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, watch_id)
);`).Error)
	return conn
}

func seedWatch(t *testing.T, conn *gorm.DB, model string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, conn.Exec(
		`INSERT INTO watches (id, model_name, source, created_at, last_updated) VALUES (?, ?, ?, ?, ?)`,
		id, model, models.WatchSourceCatalog, time.Now().UTC(), time.Now().UTC(),
	).Error)
	return id
}

func TestRepositoryAddIsIdempotent(t *testing.T) {
	conn := setupFavoritesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	watchID := seedWatch(t, conn, "Tank Louis Cartier")

	inserted, err := repo.Add(ctx, userID, watchID, time.Now())
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.Add(ctx, userID, watchID, time.Now())
	require.NoError(t, err)
	require.False(t, inserted)

	ok, err := repo.Exists(ctx, userID, watchID)
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := repo.Remove(ctx, userID, watchID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.Remove(ctx, userID, watchID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRepositoryListPagesNewestFirst(t *testing.T) {
	conn := setupFavoritesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	names := []string{"Submariner", "Daytona", "Explorer"}
	for i, name := range names {
		watchID := seedWatch(t, conn, name)
		_, err := repo.Add(ctx, userID, watchID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	other := seedWatch(t, conn, "Royal Oak")
	_, err := repo.Add(ctx, uuid.New(), other, base)
	require.NoError(t, err)

	first, err := repo.List(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.Equal(t, "Explorer", first.Items[0].Watch.ModelName)
	require.Equal(t, "Daytona", first.Items[1].Watch.ModelName)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, userID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, "Submariner", second.Items[0].Watch.ModelName)
	require.Empty(t, second.NextCursor)

	ids, err := repo.ListIDs(ctx, userID)
	require.NoError(t, err)
	require.Len(t, ids, 3)
}

func TestRepositoryListRejectsBadCursor(t *testing.T) {
	repo := NewRepository(setupFavoritesTestDB(t))
	_, err := repo.List(context.Background(), uuid.New(), pagination.Params{Cursor: "not-a-cursor"})
	var cursorErr *pagination.CursorError
	require.ErrorAs(t, err, &cursorErr)
}
