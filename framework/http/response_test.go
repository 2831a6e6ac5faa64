package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "val", decodeJSON(t, rr)["key"])
}

func TestResponse_Envelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gohttp.Response)
		status int
		key    string
		want   any
	}{
		{"Success", func(r *gohttp.Response) { r.Success("ok") }, http.StatusOK, "data", "ok"},
		{"Created", func(r *gohttp.Response) { r.Created("new") }, http.StatusCreated, "data", "new"},
		{"Error", func(r *gohttp.Response) { r.Error(http.StatusTeapot, "tea") }, http.StatusTeapot, "message", "tea"},
		{"NotFound", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "message", "Not found."},
		{"ServerError", func(r *gohttp.Response) { r.ServerError("boom") }, http.StatusInternalServerError, "message", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.write(res)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.want, decodeJSON(t, rr)[tt.key])
		})
	}
}

func TestResponse_NoContent(t *testing.T) {
	res, rr := newResponse(t)
	res.NoContent()
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

// ── Fail ──────────────────────────────────────────────────────────────────────

func TestResponse_FailClassifiesInjectionErrors(t *testing.T) {
	cycle := &container.CycleDependencyError{Cycle: []string{"A", "B"}}

	res, rr := newResponse(t)
	res.Fail(fmt.Errorf("resolve: %w", cycle), false)
	m := decodeJSON(t, rr)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "cycle_dependency", m["error"])
	assert.Equal(t, "Server Error.", m["message"])

	res, rr = newResponse(t)
	res.Fail(cycle, true)
	assert.Equal(t, "found cycle dependencies in: A, B", decodeJSON(t, rr)["message"])

	res, rr = newResponse(t)
	res.Fail(errors.New("plain"), false)
	_, ok := decodeJSON(t, rr)["error"]
	assert.False(t, ok)
}
