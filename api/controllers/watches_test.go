package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/internal/brands"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

type stubWatchService struct {
	lastBrand  int64
	lastParams pagination.Params
}

func (s *stubWatchService) Get(ctx context.Context, id uuid.UUID) (watches.WatchDTO, error) {
	return watches.WatchDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "watch not found")
}

func (s *stubWatchService) ListByBrand(ctx context.Context, brandID int64, params pagination.Params) (pagination.Page[watches.WatchDTO], error) {
	s.lastBrand = brandID
	s.lastParams = params
	return pagination.Page[watches.WatchDTO]{Items: []watches.WatchDTO{{ModelName: "Speedmaster"}}, NextCursor: "next"}, nil
}

type stubBrandService struct {
	lastQuery string
}

func (s *stubBrandService) Directory(ctx context.Context, query string) (brands.DirectoryDTO, error) {
	s.lastQuery = query
	return brands.DirectoryDTO{Groups: []brands.Group{{Letter: "O", Brands: []brands.BrandDTO{{ID: 7, Name: "Omega"}}}}, Total: 1}, nil
}

func (s *stubBrandService) Get(ctx context.Context, id int64) (brands.BrandDTO, error) {
	return brands.BrandDTO{ID: id, Name: "Omega"}, nil
}

func (s *stubBrandService) Invalidate(ctx context.Context) error { return nil }

func TestWatchGetNotFound(t *testing.T) {
	id := uuid.New()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/watches/"+id.String(), nil), map[string]string{"watchId": id.String()})
	rec := httptest.NewRecorder()
	WatchGet(&stubWatchService{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrandWatchesPaginates(t *testing.T) {
	svc := &stubWatchService{}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/brands/7/watches?cursor=c1", nil), map[string]string{"brandId": "7"})
	rec := httptest.NewRecorder()
	BrandWatches(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.lastBrand)
	assert.Equal(t, pagination.Params{Limit: pagination.DefaultLimit, Cursor: "c1"}, svc.lastParams)

	var page pagination.Page[watches.WatchDTO]
	decodeData(t, rec, &page)
	assert.Equal(t, "next", page.NextCursor)
}

func TestBrandWatchesRejectsBadBrandID(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/brands/abc/watches", nil), map[string]string{"brandId": "abc"})
	rec := httptest.NewRecorder()
	BrandWatches(&stubWatchService{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrandDirectoryPassesQuery(t *testing.T) {
	svc := &stubBrandService{}
	rec := httptest.NewRecorder()
	BrandDirectory(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/brands?q=+ome+", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ome", svc.lastQuery)
	var dir brands.DirectoryDTO
	decodeData(t, rec, &dir)
	assert.Equal(t, 1, dir.Total)
	assert.Equal(t, "O", dir.Groups[0].Letter)
}
