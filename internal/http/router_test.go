package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"

	"github.com/cat-in-the-dark/MessageBus/internal/app"
	"github.com/cat-in-the-dark/MessageBus/internal/match"
	"github.com/cat-in-the-dark/MessageBus/internal/ws"
)

func testRouter() (http.Handler, *match.Registry) {
	cfg := app.Config{CORSAllow: []string{"*"}, RateMax: 1000}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := match.NewRegistry(2)
	hub := ws.NewHub(logger, reg, nil, nil, nil, 0)
	return NewRouter(cfg, logger, hub, reg), reg
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := testRouter()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, reg := testRouter()

	reg.AssignOrCreate("a", "")
	reg.AssignOrCreate("b", "")
	reg.AssignOrCreate("c", "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Rooms)
	assert.Equal(t, 3, resp.Players)
}
