package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/watchengine/watch-engine-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestWatchesMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_watches"), []string{
		"CREATE TABLE IF NOT EXISTS watches",
		"embedding vector(512)",
		"raw_data jsonb",
		"CONSTRAINT watches_source_external_id_key UNIQUE (source, external_id)",
		"USING hnsw (embedding vector_cosine_ops)",
		"DROP TABLE IF EXISTS watches",
	})
}

func TestSimilarityFunctionSignature(t *testing.T) {
	assertContains(t, readMigration(t, "create_search_watches_by_similarity"), []string{
		"CREATE OR REPLACE FUNCTION search_watches_by_similarity(",
		"query_text text",
		"similarity_threshold double precision DEFAULT 0.7",
		"query_embedding vector(512) DEFAULT NULL",
		"similarity_score double precision",
		"WHERE scored.score >= similarity_threshold",
		"DROP FUNCTION IF EXISTS search_watches_by_similarity",
	})
}

func TestUserScopedTablesCascade(t *testing.T) {
	assertContains(t, readMigration(t, "create_favorites"), []string{
		"CONSTRAINT favorites_user_watch_key UNIQUE (user_id, watch_id)",
		"FOREIGN KEY (watch_id) REFERENCES watches(id) ON DELETE CASCADE",
	})
	assertContains(t, readMigration(t, "create_watch_lists"), []string{
		"CONSTRAINT watch_list_items_list_watch_key UNIQUE (list_id, watch_id)",
		"FOREIGN KEY (list_id) REFERENCES watch_lists(id) ON DELETE CASCADE",
		"CHECK (char_length(name) BETWEEN 1 AND 100)",
	})
	assertContains(t, readMigration(t, "create_user_searches"), []string{
		"PRIMARY KEY (user_id, search_date)",
	})
	assertContains(t, readMigration(t, "create_watch_preferences"), []string{
		"case_sizes numeric[]",
		"price_range_min <= price_range_max",
	})
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Watch Tags!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_watch_tags.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestEmbeddedMigrationsMatchRepo(t *testing.T) {
	if err := migrate.ValidateDir(""); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	fsys, err := migrate.Source("")
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	embedded, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d migrations, repo has %d", len(embedded), len(onDisk))
	}
}

func TestCreateSQLMigrationSortsAfterNewest(t *testing.T) {
	dir := t.TempDir()
	future := "29991231235959_later.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("seed migration: %v", err)
	}

	path, err := migrate.CreateSQLMigration(dir, "next one")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if got := filepath.Base(path); got != "30000101000000_next_one.sql" {
		t.Fatalf("expected version bumped past newest file, got %s", got)
	}
}

func TestValidateFSRejectsBrokenFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {
			"1_init.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down": {
			"20250101000000_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		},
		"duplicate version": {
			"20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"unwrapped function": {
			"20250101000000_fn.sql": {Data: []byte("-- +goose Up\nCREATE FUNCTION f() RETURNS int AS $$ SELECT 1 $$ LANGUAGE sql;\n-- +goose Down\n")},
		},
		"unbalanced block": {
			"20250101000000_fn.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if err := migrate.ValidateFS(fsys); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
