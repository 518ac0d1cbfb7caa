package catalog

import (
	"encoding/base64"
	"testing"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	pos := store.Position{DateAdded: 1700000000123, ID: "a|b"}

	token := EncodeCursor(pos)
	decoded, err := DecodeCursor(token)

	require.NoError(t, err)
	assert.Equal(t, pos, decoded)
	assert.NotContains(t, token, "=")
}

func TestDecodeCursor_Rejects(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	testCases := []struct {
		name  string
		token string
	}{
		{"not base64", "***"},
		{"missing parts", enc(Ordering + "|12")},
		{"other ordering", enc("price.asc|12|p1")},
		{"bad date", enc(Ordering + "|yesterday|p1")},
		{"empty id", enc(Ordering + "|12|")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCursor(tc.token)
			assert.ErrorIs(t, err, perrors.ErrInvalidCursor)
		})
	}
}
