package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/watchengine/watch-engine-backend/api/controllers"
	"github.com/watchengine/watch-engine-backend/api/routes"
	"github.com/watchengine/watch-engine-backend/internal/analyzer"
	"github.com/watchengine/watch-engine-backend/internal/auth"
	"github.com/watchengine/watch-engine-backend/internal/brands"
	"github.com/watchengine/watch-engine-backend/internal/favorites"
	"github.com/watchengine/watch-engine-backend/internal/imageproxy"
	"github.com/watchengine/watch-engine-backend/internal/profiles"
	"github.com/watchengine/watch-engine-backend/internal/quota"
	"github.com/watchengine/watch-engine-backend/internal/search"
	"github.com/watchengine/watch-engine-backend/internal/users"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/internal/watchlists"
	"github.com/watchengine/watch-engine-backend/pkg/auth/session"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/instance"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
	"github.com/watchengine/watch-engine-backend/pkg/migrate"
	"github.com/watchengine/watch-engine-backend/pkg/redis"
	"github.com/watchengine/watch-engine-backend/pkg/storage"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"instance": instance.GetID()},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricSet := metrics.NewSet(registry)

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var chat llm.Chatter
	var embedder llm.Embedder
	if cfg.OpenAI.Enabled() {
		llmClient, err := llm.NewClient(cfg.OpenAI, llm.WithMetrics(metricSet.LLM), llm.WithLogger(logg))
		if err != nil {
			return err
		}
		chat, embedder = llmClient, llmClient
	} else {
		logg.Warn(ctx, "openai api key not set, analyzer and llm search disabled")
	}

	var catalogClient *watchdb.Client
	if cfg.WatchDB.APIKey != "" {
		catalogClient, err = watchdb.NewClient(cfg.WatchDB.APIKey,
			watchdb.WithBaseURL(cfg.WatchDB.BaseURL),
			watchdb.WithHost(cfg.WatchDB.Host),
			watchdb.WithTimeout(cfg.WatchDB.Timeout),
		)
		if err != nil {
			return err
		}
	}

	var uploader storage.Uploader
	if cfg.Storage.Enabled() {
		storageClient, err := storage.NewClient(ctx, cfg.Storage, logg)
		if err != nil {
			return err
		}
		uploader = storageClient
		readiness["storage"] = storageClient
	}

	gdb := dbClient.DB()
	watchRepo := watches.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gdb),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	quotaService, err := quota.NewService(quota.ServiceParams{
		Repo:       quota.NewRepository(gdb),
		DailyLimit: cfg.Search.DailyLimit,
		Metrics:    metricSet.Search,
	})
	if err != nil {
		return err
	}

	databaseProvider, err := search.NewDatabaseProvider(search.DatabaseProviderParams{
		Repo:      watchRepo,
		Embedder:  embedder,
		Threshold: cfg.Search.SimilarityThreshold,
		Limit:     cfg.Search.MaxResults,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	providers := map[string]search.Provider{
		config.SearchProviderDatabase: databaseProvider,
		config.SearchProviderLLM:      search.NewLLMProvider(chat),
	}
	if catalogClient != nil {
		providers[config.SearchProviderCatalog] = search.NewCatalogProvider(catalogClient)
	} else {
		providers[config.SearchProviderCatalog] = search.NewCatalogProvider(nil)
	}
	searchService, err := search.NewService(search.ServiceParams{
		Providers:       providers,
		DefaultProvider: cfg.Search.Provider,
		Quota:           quotaService,
		Metrics:         metricSet.Search,
		Logger:          logg,
	})
	if err != nil {
		return err
	}

	watchService, err := watches.NewService(watchRepo)
	if err != nil {
		return err
	}

	brandService, err := brands.NewService(brands.ServiceParams{
		Repo:   brands.NewRepository(gdb),
		Cache:  redisClient,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	profileService, err := profiles.NewService(profiles.ServiceParams{
		Repo:          profiles.NewRepository(gdb),
		Storage:       uploader,
		MaxImageBytes: int64(cfg.Storage.MaxUploadMB) << 20,
		Logger:        logg,
	})
	if err != nil {
		return err
	}

	favoriteService, err := favorites.NewService(favorites.ServiceParams{
		Repo:    favorites.NewRepository(gdb),
		Watches: watchRepo,
	})
	if err != nil {
		return err
	}

	listService, err := watchlists.NewService(watchlists.ServiceParams{
		Repo:    watchlists.NewRepository(gdb),
		Watches: watchRepo,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"provider": cfg.Search.Provider,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			Metrics:        metricSet,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			Readiness:      readiness,
			RateStore:      redisClient,
			Sessions:       sessionManager,
			Auth:           authService,
			Analyzer: analyzer.NewService(analyzer.ServiceParams{
				Chat:          chat,
				CannedPhrases: cfg.Search.CannedPhrases,
			}),
			Search:     searchService,
			Quota:      quotaService,
			ImageProxy: imageproxy.NewService(cfg.ImageProxy),
			Watches:    watchService,
			Brands:     brandService,
			Profiles:   profileService,
			Favorites:  favoriteService,
			WatchLists: listService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
