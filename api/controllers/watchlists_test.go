package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/internal/watchlists"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

type stubWatchLists struct {
	watchlists.Service
	created     watchlists.CreateListInput
	renamed     string
	added       uuid.UUID
	removed     uuid.UUID
	notFoundFor uuid.UUID
}

func (s *stubWatchLists) Lists(ctx context.Context, userID uuid.UUID) ([]watchlists.ListDTO, error) {
	return []watchlists.ListDTO{{ID: uuid.New(), Name: "Grails", ItemCount: 2}}, nil
}

func (s *stubWatchLists) Create(ctx context.Context, userID uuid.UUID, input watchlists.CreateListInput) (watchlists.ListDTO, error) {
	s.created = input
	return watchlists.ListDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubWatchLists) Rename(ctx context.Context, userID, listID uuid.UUID, name string) (watchlists.ListDTO, error) {
	if listID == s.notFoundFor {
		return watchlists.ListDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "watch list not found")
	}
	s.renamed = name
	return watchlists.ListDTO{ID: listID, Name: name}, nil
}

func (s *stubWatchLists) AddItem(ctx context.Context, userID, listID, watchID uuid.UUID) error {
	s.added = watchID
	return nil
}

func (s *stubWatchLists) RemoveItem(ctx context.Context, userID, listID, watchID uuid.UUID) error {
	s.removed = watchID
	return nil
}

func TestWatchListCreateWithSeedWatch(t *testing.T) {
	svc := &stubWatchLists{}
	watchID := uuid.New()
	body := `{"name":"Grails","watch_id":"` + watchID.String() + `"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/lists", bytes.NewBufferString(body)), uuid.New())
	rec := httptest.NewRecorder()
	WatchListCreate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Grails", svc.created.Name)
	require.NotNil(t, svc.created.WatchID)
	assert.Equal(t, watchID, *svc.created.WatchID)
}

func TestWatchListCreateRequiresName(t *testing.T) {
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/lists", bytes.NewBufferString(`{}`)), uuid.New())
	rec := httptest.NewRecorder()
	WatchListCreate(&stubWatchLists{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchListRenameForeignListIsNotFound(t *testing.T) {
	listID := uuid.New()
	svc := &stubWatchLists{notFoundFor: listID}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/lists/"+listID.String(), bytes.NewBufferString(`{"name":"Mine"}`))
	req = withURLParams(withUser(req, uuid.New()), map[string]string{"listId": listID.String()})
	rec := httptest.NewRecorder()
	WatchListRename(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchListItemRoutes(t *testing.T) {
	svc := &stubWatchLists{}
	userID, listID, watchID := uuid.New(), uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lists/x/items", bytes.NewBufferString(`{"watch_id":"`+watchID.String()+`"}`))
	req = withURLParams(withUser(req, userID), map[string]string{"listId": listID.String()})
	rec := httptest.NewRecorder()
	WatchListAddItem(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, watchID, svc.added)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/lists/x/items/y", nil)
	req = withURLParams(withUser(req, userID), map[string]string{"listId": listID.String(), "watchId": watchID.String()})
	rec = httptest.NewRecorder()
	WatchListRemoveItem(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, watchID, svc.removed)
}

func TestWatchListsIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	WatchListsIndex(&stubWatchLists{}, nil).ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil), uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	var lists []watchlists.ListDTO
	decodeData(t, rec, &lists)
	require.Len(t, lists, 1)
	assert.Equal(t, 2, lists[0].ItemCount)
}
