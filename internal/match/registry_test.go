package match

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAssignPairs(t *testing.T) {
	g := NewRegistry(2)

	roomA, pa, created := g.AssignOrCreate("a", "10.0.0.1:1")
	require.True(t, created)
	assert.Equal(t, "host", pa.Role)
	assert.Equal(t, roomA.ID, pa.RoomID)

	roomB, pb, created := g.AssignOrCreate("b", "10.0.0.2:2")
	assert.False(t, created, "second arrival joins the waiting room")
	assert.Equal(t, roomA.ID, roomB.ID)
	assert.Equal(t, "guest", pb.Role)

	// Third arrival can't join the full pair; a new room opens.
	roomC, pc, created := g.AssignOrCreate("c", "10.0.0.3:3")
	assert.True(t, created)
	assert.NotEqual(t, roomA.ID, roomC.ID)
	assert.Equal(t, "host", pc.Role)

	rooms, players := g.Counts()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 3, players)
}

func TestRegistryLookup(t *testing.T) {
	g := NewRegistry(2)
	_, p, _ := g.AssignOrCreate("a", "")

	got, ok := g.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = g.Lookup("ghost")
	assert.False(t, ok)
}

func TestRegistryConcurrentAssign(t *testing.T) {
	const players = 200
	g := NewRegistry(2)

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			g.AssignOrCreate(fmt.Sprintf("conn-%d", n), "")
		}(i)
	}
	wg.Wait()

	rooms, connected := g.Counts()
	assert.Equal(t, players/2, rooms, "no racing pair may open an extra room")
	assert.Equal(t, players, connected)

	// Every room holds exactly capacity players with distinct roles.
	for i := 0; i < players; i++ {
		p, ok := g.Lookup(fmt.Sprintf("conn-%d", i))
		require.True(t, ok)
		room, ok := g.Room(p.RoomID)
		require.True(t, ok)

		seated := room.Players()
		require.Len(t, seated, 2)
		assert.NotEqual(t, seated[0].Role, seated[1].Role)
	}
}

func TestRegistryRemove(t *testing.T) {
	g := NewRegistry(2)
	room, _, _ := g.AssignOrCreate("a", "")
	g.AssignOrCreate("b", "")

	assert.False(t, g.Remove(room.ID), "players still connected")

	room.Disconnect("a")
	assert.False(t, g.Remove(room.ID))

	room.Disconnect("b")
	assert.True(t, g.Remove(room.ID))
	assert.False(t, g.Remove(room.ID), "second removal is a no-op")

	_, ok := g.Room(room.ID)
	assert.False(t, ok)
}

func TestRegistryRemovePlayer(t *testing.T) {
	g := NewRegistry(2)
	g.AssignOrCreate("a", "")

	p, ok := g.RemovePlayer("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.ConnID)

	_, ok = g.RemovePlayer("a")
	assert.False(t, ok, "duplicate removal is a no-op")
}

func TestRegistryStaleWaiting(t *testing.T) {
	g := NewRegistry(2)
	room, _, _ := g.AssignOrCreate("a", "")

	assert.Nil(t, g.StaleWaiting(0), "zero TTL disables the reaper")
	assert.Empty(t, g.StaleWaiting(time.Hour))

	room.CreatedAt = time.Now().Add(-2 * time.Hour)
	stale := g.StaleWaiting(time.Hour)
	require.Len(t, stale, 1)
	assert.Equal(t, room.ID, stale[0].ID)

	// Full rooms are never stale, however old.
	g.AssignOrCreate("b", "")
	assert.Empty(t, g.StaleWaiting(time.Hour))
}
