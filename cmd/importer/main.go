package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/watchengine/watch-engine-backend/internal/brands"
	"github.com/watchengine/watch-engine-backend/internal/catalogimport"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/instance"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
	"github.com/watchengine/watch-engine-backend/pkg/migrate"
	"github.com/watchengine/watch-engine-backend/pkg/redis"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "importer"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	var makes makeList
	cmd := flag.String("cmd", "all", "import job: brands|watches|all")
	maxPages := flag.Int("max-pages", 0, "stop each make after this many pages (0 = no limit)")
	flag.Var(&makes, "make", "catalog make id to import, repeatable or comma separated (default: every stored brand)")
	flag.Parse()

	opts, err := buildOptions(*cmd, makes, *maxPages)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "importer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"instance": instance.GetID()},
	})

	if cfg.WatchDB.APIKey == "" {
		logg.Error(context.Background(), "catalog import needs a RapidAPI key", fmt.Errorf("%s is not set", config.EnvRapidAPIKey))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogClient, err := watchdb.NewClient(cfg.WatchDB.APIKey,
		watchdb.WithBaseURL(cfg.WatchDB.BaseURL),
		watchdb.WithHost(cfg.WatchDB.Host),
		watchdb.WithTimeout(cfg.WatchDB.Timeout),
	)
	requireResource(ctx, logg, "watch catalog", err)

	metricSet := metrics.NewSet(prometheus.DefaultRegisterer)

	var embedder llm.Embedder
	if cfg.OpenAI.Enabled() {
		llmClient, err := llm.NewClient(cfg.OpenAI, llm.WithMetrics(metricSet.LLM), llm.WithLogger(logg))
		requireResource(ctx, logg, "openai", err)
		embedder = llmClient
	} else {
		logg.Warn(ctx, "openai api key not set, watches are imported without embeddings")
	}

	brandRepo := brands.NewRepository(dbClient.DB())
	brandService, err := brands.NewService(brands.ServiceParams{
		Repo:   brandRepo,
		Cache:  redisClient,
		Logger: logg,
	})
	requireResource(ctx, logg, "brand service", err)

	lock, err := catalogimport.NewRedisLock(redisClient, redisClient.LockKey(catalogimport.LockName), 0)
	requireResource(ctx, logg, "import lock", err)

	importer, err := catalogimport.New(catalogimport.Params{
		Catalog:   catalogClient,
		Brands:    brandRepo,
		Watches:   watches.NewRepository(dbClient.DB()),
		Embedder:  embedder,
		Lock:      lock,
		BrandDir:  brandService,
		Metrics:   metricSet.Import,
		Logger:    logg,
		PageSize:  cfg.WatchDB.PageSize,
		PageDelay: cfg.WatchDB.PageDelay,
	})
	requireResource(ctx, logg, "importer", err)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"cmd":       *cmd,
		"makes":     makes.String(),
		"max_pages": *maxPages,
	})
	logg.Info(ctx, "starting catalog import")

	result, err := importer.Run(ctx, opts)
	ctx = logg.WithField(ctx, "result", result.String())
	switch {
	case errors.Is(err, catalogimport.ErrLocked):
		logg.Warn(ctx, "catalog import skipped, lock held elsewhere")
	case err != nil:
		logg.Error(ctx, "catalog import finished with errors", err)
		os.Exit(1)
	default:
		logg.Info(ctx, "catalog import complete")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
