package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// migrationFile is one parsed goose SQL file name.
type migrationFile struct {
	version int64
	name    string
}

func parseFileName(name string) (migrationFile, bool) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return migrationFile{}, false
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return migrationFile{}, false
	}
	return migrationFile{version: version, name: name}, true
}

func slug(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes an empty goose migration named
// <YYYYMMDDHHMMSS>_<slug>.sql. The version is bumped past the newest file
// already in dir so generated files always sort last.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	safe := slug(name)
	if safe == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	files, err := listFiles(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	version := time.Now().UTC()
	if n := len(files); n > 0 {
		latest, err := time.Parse(versionLayout, strconv.FormatInt(files[n-1].version, 10))
		if err == nil && !version.After(latest) {
			version = latest.Add(time.Second)
		}
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe))
	body := fmt.Sprintf("-- +goose Up\n-- %s\n\n-- +goose Down\n-- revert %s\n", safe, safe)
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

// ValidateDir checks the migrations under dir, or the embedded set when dir is empty.
func ValidateDir(dir string) error {
	fsys, err := Source(dir)
	if err != nil {
		return err
	}
	return ValidateFS(fsys)
}

// ValidateFS rejects badly named or duplicated versions, files missing a
// goose Up or Down marker, and dollar-quoted bodies outside a
// StatementBegin/StatementEnd block.
func ValidateFS(fsys fs.FS) error {
	files, err := listFiles(fsys)
	if err != nil {
		return err
	}
	for i, f := range files {
		if i > 0 && files[i-1].version == f.version {
			return fmt.Errorf("duplicate migration version %d in %q and %q", f.version, files[i-1].name, f.name)
		}
		raw, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return fmt.Errorf("read %q: %w", f.name, err)
		}
		if err := validateBody(string(raw)); err != nil {
			return fmt.Errorf("migration %q: %w", f.name, err)
		}
	}
	return nil
}

func validateBody(body string) error {
	if !strings.Contains(body, "-- +goose Up") {
		return errors.New(`missing "-- +goose Up"`)
	}
	if !strings.Contains(body, "-- +goose Down") {
		return errors.New(`missing "-- +goose Down"`)
	}
	begins := strings.Count(body, "-- +goose StatementBegin")
	ends := strings.Count(body, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("%d StatementBegin markers but %d StatementEnd", begins, ends)
	}
	if strings.Contains(body, "$$") && begins == 0 {
		return errors.New("dollar-quoted body needs a StatementBegin/StatementEnd block")
	}
	return nil
}

func listFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	files := make([]migrationFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		f, ok := parseFileName(e.Name())
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}
