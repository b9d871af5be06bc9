package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	OpenAPIHandler(w, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/boards", "/boards/{board_id}", "/boards/{board_id}/cards", "/boards/{board_id}/cards/{card_id}"} {
		assert.Contains(t, paths, p)
	}

	cardPath := paths["/boards/{board_id}/cards/{card_id}"].(map[string]any)
	assert.Contains(t, cardPath, "put")
	assert.Contains(t, cardPath, "delete")
}
