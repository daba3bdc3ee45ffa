// Package pagination implements (created_at, id) keyset cursors for list endpoints.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID.String())
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor returns nil, nil for an empty cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: t.UTC(), ID: id}, nil
}

// Keyset orders query newest first, skips rows up to the cursor and fetches one
// extra row so the caller can tell whether another page exists.
func Keyset(query *gorm.DB, params Params, table string) (*gorm.DB, int, error) {
	limit := NormalizeLimit(params.Limit)
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, 0, err
	}
	createdAt := table + ".created_at"
	id := table + ".id"
	if cursor != nil {
		query = query.Where(
			fmt.Sprintf("(%s < ?) OR (%s = ? AND %s < ?)", createdAt, createdAt, id),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	query = query.Order(createdAt + " DESC").Order(id + " DESC").Limit(limit + 1)
	return query, limit, nil
}

// Build trims rows fetched by Keyset to limit and derives the next cursor.
func Build[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.NextCursor = EncodeCursor(cursorOf(rows[limit-1]))
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
