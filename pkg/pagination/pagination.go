// Package pagination implements newest-first keyset pages over
// (created_at, id) with opaque URL-safe cursors.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params is what a listing endpoint accepts.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the position of the last row a client has seen.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"i"`
}

// Page is the listing shape returned by cursor endpoints.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CursorError marks a malformed client supplied cursor.
type CursorError struct {
	err error
}

func (e *CursorError) Error() string { return "invalid cursor: " + e.err.Error() }
func (e *CursorError) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return &CursorError{err: fmt.Errorf(format, args...)}
}

// NormalizeLimit clamps limit into [1, MaxLimit], with DefaultLimit for <= 0.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer is the row count to fetch so Trim can tell whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	c.CreatedAt = c.CreatedAt.UTC()
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil, nil for a blank cursor.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, invalid("decode: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, invalid("payload: %w", err)
	}
	if c.CreatedAt.IsZero() || c.ID == uuid.Nil {
		return nil, invalid("missing position")
	}
	return &c, nil
}

// IsCursorError reports whether err came from ParseCursor.
func IsCursorError(err error) bool {
	var target *CursorError
	return errors.As(err, &target)
}

// Keyset orders newest first on (createdCol, idCol) and, when c is set,
// keeps only rows strictly after it.
func Keyset(c *Cursor, createdCol, idCol string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if c != nil {
			q = q.Where(
				fmt.Sprintf("(%[1]s < ?) OR (%[1]s = ? AND %[2]s < ?)", createdCol, idCol),
				c.CreatedAt, c.CreatedAt, c.ID,
			)
		}
		return q.Order(createdCol + " DESC").Order(idCol + " DESC")
	}
}

// Trim cuts a LimitWithBuffer result back to limit and derives the next
// cursor from the last kept row when the extra row was present.
func Trim[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	limit = NormalizeLimit(limit)
	if len(rows) > limit {
		rows = rows[:limit]
		return Page[T]{Items: rows, NextCursor: EncodeCursor(cursorOf(rows[limit-1]))}
	}
	if rows == nil {
		rows = []T{}
	}
	return Page[T]{Items: rows}
}
