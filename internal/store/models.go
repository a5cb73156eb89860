package store

// RoomRecord is the audit row written when the matcher opens a room.
type RoomRecord struct {
	ID       string
	Capacity int
}

// PlayerRecord is the audit row written when a player takes a slot.
type PlayerRecord struct {
	ConnID     string
	Role       string
	RemoteAddr string
}
