package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many entries any cursor query can request.
	MaxLimit = 200
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last entry of the previous page.
type Cursor struct {
	At time.Time
	ID string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor string.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.At.UTC().Format(time.RFC3339Nano), cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{At: t, ID: parts[1]}, nil
}

// Page slices items sorted newest first. key extracts the cursor fields of
// an item; the returned cursor is empty on the last page.
func Page[T any](items []T, params Params, key func(T) Cursor) ([]T, string, error) {
	after, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	start := 0
	if after != nil {
		start = len(items)
		for i, item := range items {
			if olderThan(key(item), *after) {
				start = i
				break
			}
		}
	}

	limit := NormalizeLimit(params.Limit)
	end := start + limit
	if end >= len(items) {
		return items[start:], "", nil
	}
	return items[start:end], EncodeCursor(key(items[end-1])), nil
}

// olderThan reports whether c sorts after ref in newest-first order.
func olderThan(c, ref Cursor) bool {
	if c.At.Equal(ref.At) {
		return c.ID < ref.ID
	}
	return c.At.Before(ref.At)
}
