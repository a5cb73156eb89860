package match

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the process-wide matchmaking state: every open room and
// every connected player. One mutex serializes the select-or-create
// sequence so two arrivals can never both open a new room, and a room
// can't be picked as waiting after another arrival just filled it.
// Nothing inside the lock does I/O; side effects belong to the caller.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	players  map[string]*Player
	capacity int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		players:  make(map[string]*Player),
		capacity: capacity,
	}
}

// AssignOrCreate seats connID in some waiting room, opening a fresh one
// if none has a free slot. Map order picks the room; callers get no
// fairness guarantee. created is true when this call opened the room,
// so the caller can emit the room-created side effect after the lock
// drops.
func (g *Registry) AssignOrCreate(connID, remoteAddr string) (room *Room, player *Player, created bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.rooms {
		if r.IsWaiting() {
			room = r
			break
		}
	}
	if room == nil {
		room = NewRoom(uuid.NewString(), g.capacity)
		g.rooms[room.ID] = room
		created = true
	}

	player = newPlayer(connID, room.ID, remoteAddr)
	room.connect(player)
	g.players[connID] = player

	return room, player, created
}

// Lookup returns the player owning connID, if connected.
func (g *Registry) Lookup(connID string) (*Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[connID]
	return p, ok
}

// Room returns a room by id.
func (g *Registry) Room(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	return r, ok
}

// RemovePlayer drops connID from the player map, returning the removed
// player. Absent keys are a no-op, so duplicate disconnects fall out here.
func (g *Registry) RemovePlayer(connID string) (*Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[connID]
	if ok {
		delete(g.players, connID)
	}
	return p, ok
}

// Remove deletes a room once every player has left. Safe under
// concurrent disconnect paths; removing an absent key is a no-op.
func (g *Registry) Remove(roomID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[roomID]
	if !ok || !r.ReadyToDelete() {
		return false
	}
	delete(g.rooms, roomID)
	return true
}

// Counts reports live room and player totals.
func (g *Registry) Counts() (rooms, players int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms), len(g.players)
}

// StaleWaiting returns waiting rooms older than ttl, for the optional
// reaper. A ttl of zero means rooms wait forever and nothing is stale.
func (g *Registry) StaleWaiting(ttl time.Duration) []*Room {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-ttl)

	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*Room
	for _, r := range g.rooms {
		if r.IsWaiting() && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
