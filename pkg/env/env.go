// Package env reads the few process variables that are needed before the
// envconfig tree is loaded.
package env

import (
	"os"
	"strconv"
	"strings"
)

// String returns the trimmed value of key, or fallback when it is unset or blank.
func String(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Bool parses key with strconv.ParseBool. Unset or unparsable values yield fallback.
func Bool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
