package httpx

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/cat-in-the-dark/MessageBus/internal/app"
	"github.com/cat-in-the-dark/MessageBus/internal/match"
	"github.com/cat-in-the-dark/MessageBus/internal/ws"
	"github.com/cat-in-the-dark/MessageBus/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, reg *match.Registry) http.Handler {
	mw := NewMiddleware(cfg)
	api := &StatsAPI{Registry: reg}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint: connect, get matched, relay
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Introspection
	mux.Handle("/api/stats", http.HandlerFunc(api.Stats))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}

type StatsAPI struct{ Registry *match.Registry }

type statsResponse struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

// Stats reports live room and player counts.
func (a *StatsAPI) Stats(w http.ResponseWriter, _ *http.Request) {
	rooms, players := a.Registry.Counts()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{Rooms: rooms, Players: players})
}
