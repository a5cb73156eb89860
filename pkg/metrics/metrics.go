package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchrelay_rooms_created_total",
		Help: "Rooms opened by the matcher.",
	})
	PlayersConnected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchrelay_players_connected_total",
		Help: "Players seated in a room.",
	})
	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchrelay_messages_relayed_total",
		Help: "Payloads fanned out to room mates.",
	})
	Disconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchrelay_disconnects_total",
		Help: "First disconnect signals handled per player.",
	})
	OpenRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchrelay_open_rooms",
		Help: "Rooms currently held by the registry.",
	})
	ConnectedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchrelay_connected_players",
		Help: "Players currently connected.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
