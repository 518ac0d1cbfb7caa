package catalog

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
)

// Ordering is the only listing order a cursor can be produced under.
const Ordering = "dateAdded.desc,id.asc"

// EncodeCursor returns an opaque, URL-safe token referencing pos.
func EncodeCursor(pos store.Position) string {
	raw := Ordering + "|" + strconv.FormatInt(pos.DateAdded, 10) + "|" + pos.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
// Any malformed token, or one produced under another ordering, yields ErrInvalidCursor.
func DecodeCursor(token string) (store.Position, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return store.Position{}, fmt.Errorf("%w: not base64", perrors.ErrInvalidCursor)
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 {
		return store.Position{}, fmt.Errorf("%w: malformed", perrors.ErrInvalidCursor)
	}
	if parts[0] != Ordering {
		return store.Position{}, fmt.Errorf("%w: ordering %q", perrors.ErrInvalidCursor, parts[0])
	}
	dateAdded, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[2] == "" {
		return store.Position{}, fmt.Errorf("%w: malformed position", perrors.ErrInvalidCursor)
	}
	return store.Position{DateAdded: dateAdded, ID: parts[2]}, nil
}
