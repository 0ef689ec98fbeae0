package metrics

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/api/v1/history", "/api/v1/history"},
		{"/api/v1/summary", "/api/v1/summary"},

		// Parameterized satellite routes collapse to one label.
		{"/api/v1/satellites/25544", "/api/v1/satellites/{norad_id}"},
		{"/api/v1/satellites/44713", "/api/v1/satellites/{norad_id}"},
		{"/api/v1/satellites/A0001", "/api/v1/satellites/{norad_id}"},

		// Unknown/bot paths collapse to "other".
		{"/api/v1/satellites/", "other"},
		{"/api/v1/satellites/1/extra", "other"},
		{"/wp-admin", "other"},
		{"/.env", "other"},
		{"/api/v2/history", "other"},
		{"/", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoute(tt.path))
		})
	}
}

// TestMetricsCardinality verifies that 100 unique NORAD IDs produce
// exactly 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[normalizeRoute("/api/v1/satellites/"+strconv.Itoa(40000+i))] = true
	}
	assert.Len(t, seen, 1)
}
