package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONIsBare(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]bool{"queued": true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]bool{"queued": true}, body)
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "INVALID_TYPE", "type must be movie, series or collection")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_TYPE", body.Error.Code)
	assert.Equal(t, "type must be movie, series or collection", body.Error.Message)
}

func TestReadJSONRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"a":"1"} garbage`))
	var dst map[string]string
	assert.Error(t, ReadJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"a":"1"}`))
	require.NoError(t, ReadJSON(req, &dst))
	assert.Equal(t, "1", dst["a"])
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=abc", 50},
		{"limit=0", 1},
		{"limit=9000", 500},
		{"limit=25", 25},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		assert.Equal(t, tt.want, QueryInt(req, "limit", 50, 1, 500), tt.query)
	}
}
