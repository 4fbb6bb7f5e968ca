package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/watchengine/watch-engine-backend/api/controllers"
	"github.com/watchengine/watch-engine-backend/api/middleware"
	"github.com/watchengine/watch-engine-backend/internal/analyzer"
	"github.com/watchengine/watch-engine-backend/internal/auth"
	"github.com/watchengine/watch-engine-backend/internal/brands"
	"github.com/watchengine/watch-engine-backend/internal/favorites"
	"github.com/watchengine/watch-engine-backend/internal/imageproxy"
	"github.com/watchengine/watch-engine-backend/internal/profiles"
	"github.com/watchengine/watch-engine-backend/internal/quota"
	"github.com/watchengine/watch-engine-backend/internal/search"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/internal/watchlists"
	"github.com/watchengine/watch-engine-backend/pkg/auth/session"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type rateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies is everything the HTTP surface needs. Nil services answer
// their routes with an internal error instead of panicking.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	Metrics        *metrics.Set
	MetricsHandler http.Handler
	Readiness      map[string]controllers.Pinger
	RateStore      rateLimitStore
	Sessions       sessionManager

	Auth       auth.Service
	Analyzer   analyzer.Service
	Search     search.Service
	Quota      quota.Service
	ImageProxy *imageproxy.Service
	Watches    watches.Service
	Brands     brands.Service
	Profiles   profiles.Service
	Favorites  favorites.Service
	WatchLists watchlists.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var httpMetrics *metrics.HTTPMetrics
	if deps.Metrics != nil {
		httpMetrics = deps.Metrics.HTTP
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	proxyImage := controllers.ProxyImage(nil, logg)
	if deps.ImageProxy != nil {
		proxyImage = controllers.ProxyImage(deps.ImageProxy, logg)
	}
	maxImageBytes := int64(cfg.Storage.MaxUploadMB) << 20

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, logg))

		r.Post("/analyze-query", controllers.AnalyzeQuery(deps.Analyzer, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)).
			Post("/search-watches", controllers.SearchWatches(deps.Search, logg))
		r.Get("/proxy-image", proxyImage)

		r.Get("/watches/{watchId}", controllers.WatchGet(deps.Watches, logg))
		r.Route("/brands", func(r chi.Router) {
			r.Get("/", controllers.BrandDirectory(deps.Brands, logg))
			r.Get("/{brandId}", controllers.BrandGet(deps.Brands, logg))
			r.Get("/{brandId}/watches", controllers.BrandWatches(deps.Watches, logg))
		})

		r.Route("/v1/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Get("/v1/searches/quota", controllers.SearchQuota(deps.Quota, logg))

			r.Route("/v1/me/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(deps.Profiles, logg))
				r.Put("/", controllers.ProfilePut(deps.Profiles, logg))
				r.Post("/image", controllers.ProfileImageUpload(deps.Profiles, maxImageBytes, logg))
			})

			r.Route("/v1/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoritesList(deps.Favorites, logg))
				r.Get("/ids", controllers.FavoritesIDs(deps.Favorites, logg))
				r.Get("/{watchId}", controllers.FavoriteStatus(deps.Favorites, logg))
				r.Put("/{watchId}", controllers.FavoriteAdd(deps.Favorites, logg))
				r.Delete("/{watchId}", controllers.FavoriteRemove(deps.Favorites, logg))
				r.Post("/{watchId}/toggle", controllers.FavoriteToggle(deps.Favorites, logg))
			})

			r.Route("/v1/lists", func(r chi.Router) {
				r.Get("/", controllers.WatchListsIndex(deps.WatchLists, logg))
				r.Post("/", controllers.WatchListCreate(deps.WatchLists, logg))
				r.Patch("/{listId}", controllers.WatchListRename(deps.WatchLists, logg))
				r.Delete("/{listId}", controllers.WatchListDelete(deps.WatchLists, logg))
				r.Get("/{listId}/items", controllers.WatchListItems(deps.WatchLists, logg))
				r.Post("/{listId}/items", controllers.WatchListAddItem(deps.WatchLists, logg))
				r.Delete("/{listId}/items/{watchId}", controllers.WatchListRemoveItem(deps.WatchLists, logg))
			})
		})
	})

	return r
}
