package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/leancoffee-api/internal/api/shared"
	"github.com/phrazzld/leancoffee-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	app, err := newApplication(context.Background(), testConfig(config.DriverMemory), testLogger())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	server := httptest.NewServer(app.setupRouter())
	t.Cleanup(server.Close)
	return server
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRouter_Health(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_RootRedirectsToDocs(t *testing.T) {
	server := newTestServer(t)

	resp, err := noRedirectClient().Get(server.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api-docs", resp.Header.Get("Location"))
}

func TestRouter_APIDocs(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api-docs")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "yaml")
	assert.Contains(t, string(body), "/boards/{board_id}/cards")
}

func TestRouter_VersionedAndUnversionedRoutesShareStore(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/boards", "application/json", strings.NewReader(`{"id":"shared"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(shared.TraceIDHeader))

	resp, err = http.Post(server.URL+"/boards/shared/cards", "application/json", strings.NewReader(`{"content":"Standups"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(server.URL + "/v1/boards/shared")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var board struct {
		ID           string `json:"id"`
		CardSequence int    `json:"cardSequence"`
		Cards        []struct {
			ID      int    `json:"id"`
			Content string `json:"content"`
		} `json:"cards"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	assert.Equal(t, "shared", board.ID)
	assert.Equal(t, 1, board.CardSequence)
	require.Len(t, board.Cards, 1)
	assert.Equal(t, "Standups", board.Cards[0].Content)
}

func TestRouter_UnknownRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/nope")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
