package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"plain", fmt.Errorf("x"), http.StatusInternalServerError},
		{"validation", ValidationError("bad").Build(), http.StatusBadRequest},
		{"not found", NotFoundError("missing").Build(), http.StatusNotFound},
		{"config", ConfigError("missing configuration entry").Build(), http.StatusInternalServerError},
		{"render", RenderError("render").Build(), http.StatusUnprocessableEntity},
		{"storage", StorageError("s3").Build(), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.StatusCodeFor(tc.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tidb/stable/missing", nil)

	a.WriteErrorResponse(rec, req, NotFoundError("document not found").WithContext("url", "/tidb/stable/missing").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "document not found", body.Error)
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, "/tidb/stable/missing", body.Details["url"])
}
