package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/internal/imageproxy"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

type stubImageFetcher struct {
	lastURL string
	img     *imageproxy.Image
	err     error
}

func (s *stubImageFetcher) Fetch(ctx context.Context, rawURL string) (*imageproxy.Image, error) {
	s.lastURL = rawURL
	return s.img, s.err
}

func TestProxyImageWritesBytes(t *testing.T) {
	fetcher := &stubImageFetcher{img: &imageproxy.Image{
		ContentType:  "image/jpeg",
		Body:         []byte("jpeg-bytes"),
		CacheControl: "public, max-age=86400",
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-image?url=https%3A%2F%2Fapi-watches-v2.makingdatameaningful.com%2Fimg.jpg", nil)
	rec := httptest.NewRecorder()
	ProxyImage(fetcher, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://api-watches-v2.makingdatameaningful.com/img.jpg", fetcher.lastURL)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestProxyImageRejectsSource(t *testing.T) {
	fetcher := &stubImageFetcher{err: pkgerrors.New(pkgerrors.CodeValidation, "Invalid image source")}
	rec := httptest.NewRecorder()
	ProxyImage(fetcher, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proxy-image?url=http://evil.test/x.png", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid image source", decodeError(t, rec).Message)
}
