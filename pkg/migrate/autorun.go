package migrate

import (
	"context"
	"fmt"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	"github.com/watchengine/watch-engine-backend/pkg/db"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot in dev when
// WATCHENGINE_AUTO_MIGRATE is set. Every other environment runs cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithComponent(ctx, "migrate")
	logg.Info(ctx, "applying embedded migrations")
	if err := Run(ctx, sqlDB, "", "up", logg); err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}
	return nil
}
