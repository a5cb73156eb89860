package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/cat-in-the-dark/MessageBus/internal/match"
	"github.com/cat-in-the-dark/MessageBus/internal/store"
	"github.com/cat-in-the-dark/MessageBus/pkg/metrics"
)

// Sender is the outbound half of a connection. Send must not block;
// Close tears the transport down and eventually yields a Disconnect.
type Sender interface {
	Send(b []byte) bool
	Close()
}

// AuditLog is the write-only persistence collaborator. Every call is
// fired off the hot path; failures are logged and dropped.
type AuditLog interface {
	CreateRoom(ctx context.Context, r store.RoomRecord) error
	ConnectPlayer(ctx context.Context, roomID string, p store.PlayerRecord) error
	StartGame(ctx context.Context, roomID string) error
	UpdateDisconnect(ctx context.Context, roomID, connID string) error
}

// Notifier receives a free-text status line while a room waits.
type Notifier interface {
	Send(text string)
}

// Hub drives player lifecycle and message relay on top of the
// matchmaking registry. It is the only consumer of transport events.
type Hub struct {
	log      *slog.Logger
	registry *match.Registry
	auditLog AuditLog   // nil = no audit trail
	notifier Notifier   // nil = no webhook
	feed     *RedisFeed // nil = no event feed
	roomTTL  time.Duration

	mu      sync.RWMutex
	senders map[string]Sender // connID -> outbound side
}

// NewHub wires the hub to its collaborators; any of audit, notifier and
// feed may be nil.
func NewHub(log *slog.Logger, reg *match.Registry, audit AuditLog, notifier Notifier, feed *RedisFeed, roomTTL time.Duration) *Hub {
	return &Hub{
		log:      log,
		registry: reg,
		auditLog: audit,
		notifier: notifier,
		feed:     feed,
		roomTTL:  roomTTL,
		senders:  map[string]Sender{},
	}
}

// Run sweeps stale waiting rooms until ctx is cancelled. With no TTL
// configured rooms wait forever and Run just parks.
func (h *Hub) Run(ctx context.Context) {
	if h.roomTTL <= 0 {
		<-ctx.Done()
		return
	}

	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			h.reap()
		case <-ctx.Done():
			return
		}
	}
}

// Connect seats a new connection, matching it into a room. Fires the
// one-shot ready broadcast when this arrival fills the room.
func (h *Hub) Connect(connID, remoteAddr string, s Sender) {
	h.mu.Lock()
	h.senders[connID] = s
	h.mu.Unlock()

	room, player, created := h.registry.AssignOrCreate(connID, remoteAddr)

	metrics.PlayersConnected.Inc()
	if created {
		metrics.RoomsCreated.Inc()
		h.audit("create", func(ctx context.Context) error {
			return h.auditLog.CreateRoom(ctx, store.RoomRecord{ID: room.ID, Capacity: room.Capacity})
		})
		h.feed.Publish(Event{Room: room.ID, Event: "created"})
	}
	h.audit("connect", func(ctx context.Context) error {
		return h.auditLog.ConnectPlayer(ctx, room.ID, store.PlayerRecord{
			ConnID:     player.ConnID,
			Role:       player.Role,
			RemoteAddr: player.RemoteAddr,
		})
	})
	h.syncGauges()

	h.log.Info("hub.connect", "conn", connID, "room", room.ID, "role", player.Role, "new_room", created)

	room.IfReady(h.startGame, h.stillWaiting)
}

// Message relays a payload from connID to its room mates, stamped with
// the sender id. Unknown senders and unparseable payloads drop silently.
func (h *Hub) Message(connID string, raw []byte) {
	player, ok := h.registry.Lookup(connID)
	if !ok {
		h.log.Debug("hub.message.unknown", "conn", connID)
		return
	}

	stamped, err := stampSender(raw, connID)
	if err != nil {
		h.log.Debug("hub.message.badpayload", "conn", connID, "err", err)
		return
	}

	room, ok := h.registry.Room(player.RoomID)
	if !ok {
		return
	}
	for _, mate := range room.Mates(connID) {
		if mate.Connected() {
			h.send(mate.ConnID, stamped)
		}
	}
	metrics.MessagesRelayed.Inc()
}

// Disconnect handles a connection going away. Duplicate signals for the
// same connection are no-ops past the idempotence guards.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	delete(h.senders, connID)
	h.mu.Unlock()

	player, ok := h.registry.RemovePlayer(connID)
	if !ok {
		return
	}
	room, ok := h.registry.Room(player.RoomID)
	if !ok {
		return
	}
	if !room.Disconnect(connID) {
		return
	}
	metrics.Disconnects.Inc()

	msg, _ := json.Marshal(disconnectedMessage{Type: typeDisconnected, ClientID: connID})
	for _, mate := range room.Mates(connID) {
		if mate.Connected() {
			h.send(mate.ConnID, msg)
		}
	}

	room.SetPlayed(true)
	h.feed.Publish(Event{Room: room.ID, Event: "played", Client: connID})
	h.audit("disconnect", func(ctx context.Context) error {
		return h.auditLog.UpdateDisconnect(ctx, room.ID, connID)
	})

	if room.ReadyToDelete() && h.registry.Remove(room.ID) {
		h.feed.Publish(Event{Room: room.ID, Event: "removed"})
		h.log.Info("hub.room.removed", "room", room.ID)
	}
	h.syncGauges()

	h.log.Info("hub.disconnect", "conn", connID, "room", room.ID)
}

// ServeWS handles a new /ws connection for its whole lifetime.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	ctx := r.Context()
	connID := uuid.NewString()
	c := NewConn(sock)

	go c.WriteLoop(ctx)
	h.Connect(connID, r.RemoteAddr, c)

	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.Message(connID, payload)
	}

	h.Disconnect(connID)
	c.Close()
}

// startGame is the one-shot ready callback: each seated player gets its
// own role + client id, then the start is audited once per room.
func (h *Hub) startGame(players []*match.Player) {
	if len(players) == 0 {
		return
	}
	roomID := players[0].RoomID

	for _, p := range players {
		msg, _ := json.Marshal(gameStartedMessage{
			Type:     typeGameStarted,
			Role:     p.Role,
			ClientID: p.ConnID,
		})
		h.send(p.ConnID, msg)
	}

	h.audit("start", func(ctx context.Context) error {
		return h.auditLog.StartGame(ctx, roomID)
	})
	h.feed.Publish(Event{Room: roomID, Event: "ready"})
	h.log.Info("hub.room.ready", "room", roomID, "players", len(players))
}

// stillWaiting pings the webhook with live counts, off the connect path.
func (h *Hub) stillWaiting(room *match.Room) {
	if h.notifier == nil {
		return
	}
	rooms, players := h.registry.Counts()
	h.notifier.Send(fmt.Sprintf(
		"Somebody wants to play. Players on the server: %d. Rooms: %d.", players, rooms))
	h.log.Debug("hub.room.waiting", "room", room.ID)
}

// reap closes the connections of waiting rooms past the TTL; the normal
// disconnect path then broadcasts and cleans up.
func (h *Hub) reap() {
	for _, room := range h.registry.StaleWaiting(h.roomTTL) {
		h.log.Info("hub.room.stale", "room", room.ID, "age", time.Since(room.CreatedAt))
		for _, p := range room.Players() {
			h.mu.RLock()
			s := h.senders[p.ConnID]
			h.mu.RUnlock()
			if s != nil {
				s.Close()
			}
		}
	}
}

// send pushes b to one connection, best-effort.
func (h *Hub) send(connID string, b []byte) {
	h.mu.RLock()
	s := h.senders[connID]
	h.mu.RUnlock()
	if s == nil {
		return
	}
	if !s.Send(b) {
		h.log.Warn("hub.send.drop", "conn", connID)
	}
}

// audit runs one persistence call off the hot path.
func (h *Hub) audit(op string, fn func(ctx context.Context) error) {
	if h.auditLog == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			h.log.Error("audit.fail", "op", op, "err", err)
		}
	}()
}

func (h *Hub) syncGauges() {
	rooms, players := h.registry.Counts()
	metrics.OpenRooms.Set(float64(rooms))
	metrics.ConnectedPlayers.Set(float64(players))
}
