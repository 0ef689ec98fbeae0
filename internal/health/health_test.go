package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name  string
		check func() error
		code  int
		body  string
	}{
		{"nil check", nil, http.StatusOK, "ready\n"},
		{"passing", func() error { return nil }, http.StatusOK, "ready\n"},
		{"failing", func() error { return errors.New("snapshot root missing") }, http.StatusServiceUnavailable, "not ready: snapshot root missing\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Readyz(tt.check)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}
