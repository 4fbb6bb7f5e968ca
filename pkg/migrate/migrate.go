package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// DefaultDir is where new migrations are written. The same files are
// compiled into the binary and used when no directory is given.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the migrations under dir, or the embedded set when dir is empty.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "migrations")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	return os.DirFS(dir), nil
}

func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	fsys, err := Source(dir)
	if err != nil {
		return nil, err
	}
	// pgvector and pg_trgm tie the schema to Postgres
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down or status against db and logs each migration touched.
func Run(ctx context.Context, db *sql.DB, dir string, command string, logg *logger.Logger) error {
	provider, err := newProvider(db, dir)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		logResults(ctx, logg, results...)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
	case "down":
		result, err := provider.Down(ctx)
		logResults(ctx, logg, result)
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, st := range statuses {
			if st == nil || st.Source == nil {
				continue
			}
			logg.Info(logg.WithFields(ctx, map[string]any{
				"version":    st.Source.Version,
				"file":       path.Base(st.Source.Path),
				"state":      string(st.State),
				"applied_at": st.AppliedAt,
			}), "migration status")
		}
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string, logg *logger.Logger) error {
	if targetVersion == "" {
		return errors.New("target version is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, dir)
	if err != nil {
		return err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	logResults(ctx, logg, results...)
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

func logResults(ctx context.Context, logg *logger.Logger, results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		entry := logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"file":        path.Base(res.Source.Path),
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
			"empty":       res.Empty,
		})
		if res.Error != nil {
			logg.Error(entry, "migration failed", res.Error)
			continue
		}
		logg.Info(entry, "migration applied")
	}
}
