package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/wheelspin/go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = "0"

	services, err := setupServices(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(services.Close)
	t.Cleanup(func() { _ = services.Gateway.Stop() })

	srv := httptest.NewServer(setupServer(cfg, services).Handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServerWiresGatewayWithCORS(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/wheels", strings.NewReader(`{"seed":true}`))
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	stats, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	body, err := io.ReadAll(stats.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"open_wheels":1`)
}
