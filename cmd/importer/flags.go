package main

import (
	"fmt"
	"strings"

	"github.com/watchengine/watch-engine-backend/internal/catalogimport"
)

// makeList collects -make values. Each flag may carry a comma separated list.
type makeList []string

func (m *makeList) String() string {
	return strings.Join(*m, ",")
}

func (m *makeList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		*m = append(*m, part)
	}
	return nil
}

// buildOptions maps the -cmd value onto importer options. Watches without
// explicit makes fall back to every stored brand.
func buildOptions(cmd string, makes []string, maxPages int) (catalogimport.Options, error) {
	if maxPages < 0 {
		return catalogimport.Options{}, fmt.Errorf("-max-pages must be >= 0")
	}
	opts := catalogimport.Options{MakeIDs: makes, MaxPages: maxPages}
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "brands":
		opts.Brands = true
	case "watches":
		opts.Watches = true
	case "all":
		opts.Brands = true
		opts.Watches = true
	default:
		return catalogimport.Options{}, fmt.Errorf("unknown -cmd value %q (want brands|watches|all)", cmd)
	}
	if opts.Watches && len(makes) == 0 {
		opts.AllMakes = true
	}
	return opts, nil
}
