package match

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is a room's lifecycle step. Transitions only move forward:
//
//	Waiting -> Full -> Ready -> Played
//
// Full is the instant the last slot fills; exactly one IfReady caller
// consumes it via CAS, so the ready broadcast can never fire twice.
type State int32

const (
	StateWaiting State = iota // open slots, eligible for matching
	StateFull                 // all slots filled, ready not yet consumed
	StateReady                // ready consumed, game running
	StatePlayed               // a disconnect ended active play
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateFull:
		return "full"
	case StateReady:
		return "ready"
	case StatePlayed:
		return "played"
	}
	return "unknown"
}

// Room holds up to capacity players in connection order.
type Room struct {
	ID        string
	Capacity  int
	CreatedAt time.Time

	mu    sync.RWMutex
	slots []*Player
	state atomic.Int32
}

func NewRoom(id string, capacity int) *Room {
	return &Room{
		ID:        id,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		slots:     make([]*Player, 0, capacity),
	}
}

// State returns the room's current lifecycle step.
func (r *Room) State() State { return State(r.state.Load()) }

// IsWaiting reports whether the room still has open slots and may be
// picked by the matcher.
func (r *Room) IsWaiting() bool { return r.State() == StateWaiting }

// connect seats a player in the next slot. Returns true iff this call
// filled the last slot. A full room is a no-op; the registry never
// connects into one, the guard only covers misuse.
func (r *Room) connect(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.slots) >= r.Capacity {
		return false
	}
	p.Role = roleForSlot(len(r.slots))
	r.slots = append(r.slots, p)

	if len(r.slots) == r.Capacity {
		r.state.CompareAndSwap(int32(StateWaiting), int32(StateFull))
		return true
	}
	return false
}

// IfReady consumes the just-filled transition. The single caller that
// wins the CAS gets onReady with a snapshot of the seated players; every
// other caller (and every later call) gets onNotReady.
func (r *Room) IfReady(onReady func(players []*Player), onNotReady func(r *Room)) {
	if r.state.CompareAndSwap(int32(StateFull), int32(StateReady)) {
		onReady(r.Players())
		return
	}
	onNotReady(r)
}

// Disconnect marks the seated player as gone. True only for the first
// signal per player; duplicates are no-ops.
func (r *Room) Disconnect(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.slots {
		if p.ConnID == connID {
			return p.markDisconnected()
		}
	}
	return false
}

// SetPlayed marks the room as done with active play. A played room is
// never matched again.
func (r *Room) SetPlayed(v bool) {
	if v {
		r.state.Store(int32(StatePlayed))
	}
}

// ReadyToDelete reports whether every seated player has disconnected.
func (r *Room) ReadyToDelete() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.slots {
		if p.Connected() {
			return false
		}
	}
	return true
}

// Players returns the seated players in connection order.
func (r *Room) Players() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, len(r.slots))
	copy(out, r.slots)
	return out
}

// Mates returns every seated player except connID.
func (r *Room) Mates(connID string) []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, 0, len(r.slots))
	for _, p := range r.slots {
		if p.ConnID != connID {
			out = append(out, p)
		}
	}
	return out
}
