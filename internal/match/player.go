package match

import (
	"fmt"
	"sync/atomic"
)

// Player is one connection's seat in a room. The room reference is a
// lookup key, not a pointer: the registry owns the canonical room map.
type Player struct {
	ConnID     string
	RoomID     string
	Role       string
	RemoteAddr string

	connected atomic.Bool
}

func newPlayer(connID, roomID, remoteAddr string) *Player {
	p := &Player{
		ConnID:     connID,
		RoomID:     roomID,
		RemoteAddr: remoteAddr,
	}
	p.connected.Store(true)
	return p
}

// Connected reports whether the player's connection is still live.
func (p *Player) Connected() bool { return p.connected.Load() }

// markDisconnected flips the live flag exactly once. Returns false on
// duplicate disconnect signals, which the transport may deliver.
func (p *Player) markDisconnected() bool {
	return p.connected.CompareAndSwap(true, false)
}

// roleForSlot maps connection order to the role sent in game_started.
func roleForSlot(i int) string {
	switch i {
	case 0:
		return "host"
	case 1:
		return "guest"
	default:
		return fmt.Sprintf("player%d", i+1)
	}
}
