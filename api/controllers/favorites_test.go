package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/internal/favorites"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

type stubFavorites struct {
	favorites.Service
	set        map[uuid.UUID]bool
	known      map[uuid.UUID]bool
	lastParams pagination.Params
}

func newStubFavorites(known ...uuid.UUID) *stubFavorites {
	s := &stubFavorites{set: map[uuid.UUID]bool{}, known: map[uuid.UUID]bool{}}
	for _, id := range known {
		s.known[id] = true
	}
	return s
}

func (s *stubFavorites) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[favorites.FavoriteDTO], error) {
	s.lastParams = params
	return pagination.Page[favorites.FavoriteDTO]{Items: []favorites.FavoriteDTO{}}, nil
}

func (s *stubFavorites) Add(ctx context.Context, userID, watchID uuid.UUID) (favorites.StatusDTO, error) {
	if !s.known[watchID] {
		return favorites.StatusDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "watch not found")
	}
	s.set[watchID] = true
	return favorites.StatusDTO{WatchID: watchID, Favorite: true}, nil
}

func (s *stubFavorites) Is(ctx context.Context, userID, watchID uuid.UUID) (favorites.StatusDTO, error) {
	return favorites.StatusDTO{WatchID: watchID, Favorite: s.set[watchID]}, nil
}

func (s *stubFavorites) Remove(ctx context.Context, userID, watchID uuid.UUID) error {
	delete(s.set, watchID)
	return nil
}

func (s *stubFavorites) Toggle(ctx context.Context, userID, watchID uuid.UUID) (favorites.StatusDTO, error) {
	if s.set[watchID] {
		delete(s.set, watchID)
		return favorites.StatusDTO{WatchID: watchID}, nil
	}
	return s.Add(ctx, userID, watchID)
}

func favoriteRequest(method string, userID, watchID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/favorites/"+watchID.String(), nil)
	return withURLParams(withUser(req, userID), map[string]string{"watchId": watchID.String()})
}

func TestFavoritesRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	FavoritesList(newStubFavorites(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFavoritesListParsesPage(t *testing.T) {
	svc := newStubFavorites()
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/favorites?limit=10&cursor=abc", nil), uuid.New())
	rec := httptest.NewRecorder()
	FavoritesList(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagination.Params{Limit: 10, Cursor: "abc"}, svc.lastParams)

	rec = httptest.NewRecorder()
	FavoritesList(svc, nil).ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/favorites?limit=500", nil), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteLifecycle(t *testing.T) {
	userID, watchID := uuid.New(), uuid.New()
	svc := newStubFavorites(watchID)

	rec := httptest.NewRecorder()
	FavoriteAdd(svc, nil).ServeHTTP(rec, favoriteRequest(http.MethodPut, userID, watchID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	FavoriteStatus(svc, nil).ServeHTTP(rec, favoriteRequest(http.MethodGet, userID, watchID))
	var status favorites.StatusDTO
	decodeData(t, rec, &status)
	assert.True(t, status.Favorite)

	rec = httptest.NewRecorder()
	FavoriteToggle(svc, nil).ServeHTTP(rec, favoriteRequest(http.MethodPost, userID, watchID))
	decodeData(t, rec, &status)
	assert.False(t, status.Favorite)

	rec = httptest.NewRecorder()
	FavoriteRemove(svc, nil).ServeHTTP(rec, favoriteRequest(http.MethodDelete, userID, watchID))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFavoriteAddUnknownWatch(t *testing.T) {
	rec := httptest.NewRecorder()
	FavoriteAdd(newStubFavorites(), nil).ServeHTTP(rec, favoriteRequest(http.MethodPut, uuid.New(), uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteRejectsBadWatchID(t *testing.T) {
	req := withURLParams(withUser(httptest.NewRequest(http.MethodPut, "/api/v1/favorites/nope", nil), uuid.New()), map[string]string{"watchId": "nope"})
	rec := httptest.NewRecorder()
	FavoriteAdd(newStubFavorites(), nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
