package statushttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hllrotate/internal/enforcer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus struct {
	status enforcer.Status
}

func (f *fixedStatus) Status() enforcer.Status { return f.status }

func TestNewServerRequiresSource(t *testing.T) {
	_, err := NewServer(":0", nil)
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	s, err := NewServer(":0", &fixedStatus{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestRotationStatus(t *testing.T) {
	src := &fixedStatus{status: enforcer.Status{
		PassID:     "abc",
		Weekday:    "monday",
		Block:      "peak",
		Target:     []string{"foy_warfare"},
		Removed:    []string{"kursk_warfare"},
		LastPassAt: time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC),
	}}
	s, err := NewServer(":0", src)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rotation/status", nil)
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "abc", got["pass_id"])
	assert.Equal(t, "monday", got["weekday"])
	assert.Equal(t, "peak", got["block"])
	assert.Equal(t, []any{"foy_warfare"}, got["target"])
	assert.NotContains(t, got, "last_error")
}

func TestDefaultAddr(t *testing.T) {
	s, err := NewServer("", &fixedStatus{})
	require.NoError(t, err)
	assert.Equal(t, ":8787", s.Addr())
}
