package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/internal/imageproxy"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

type imageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*imageproxy.Image, error)
}

// ProxyImage relays an allow-listed remote image so browsers can load
// catalog pictures without cross-origin trouble.
func ProxyImage(svc imageFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("image proxy"))
			return
		}

		img, err := svc.Fetch(ctx, r.URL.Query().Get("url"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Cache-Control", img.CacheControl)
		w.Header().Set("Content-Length", strconv.Itoa(len(img.Body)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(img.Body); err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "proxy_image.write_failed")
		}
	}
}
