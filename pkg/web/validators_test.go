package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptionalInt(t *testing.T) {
	testCases := []struct {
		name         string
		query        string
		expected     int
		expectedOK   bool
		expectedCode int
	}{
		{name: "missing uses default", query: "", expected: 12, expectedOK: true, expectedCode: http.StatusOK},
		{name: "valid value", query: "?limit=5", expected: 5, expectedOK: true, expectedCode: http.StatusOK},
		{name: "out of range", query: "?limit=500", expectedOK: false, expectedCode: http.StatusBadRequest},
		{name: "not a number", query: "?limit=abc", expectedOK: false, expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			got, ok := ParseOptionalInt(req, rr, slog.Default(), "limit", 12, Between(1, 100))

			// then
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedOK {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}
