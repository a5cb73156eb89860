package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"

	"github.com/cat-in-the-dark/MessageBus/internal/app"
)

// Postgres is the write-only audit trail of rooms and players. The core
// never reads it back; a lost write costs history, not correctness.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pc, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		return nil, err
	}
	pc.MaxConns = int32(cfg.PGMaxConn)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// CreateRoom records a freshly opened room
func (p *Postgres) CreateRoom(ctx context.Context, r RoomRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (id, capacity)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, r.ID, r.Capacity)
	return err
}

// ConnectPlayer records a player taking a slot in roomID
func (p *Postgres) ConnectPlayer(ctx context.Context, roomID string, pl PlayerRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO room_players (room_id, conn_id, role, remote_addr)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, conn_id) DO NOTHING
	`, roomID, pl.ConnID, pl.Role, pl.RemoteAddr)
	return err
}

// StartGame stamps the moment a room filled up and play began
func (p *Postgres) StartGame(ctx context.Context, roomID string) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE rooms
		SET started_at = NOW()
		WHERE id = $1 AND started_at IS NULL
	`, roomID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.New("room not found or already started")
	}
	return nil
}

// UpdateDisconnect stamps a player's departure from roomID
func (p *Postgres) UpdateDisconnect(ctx context.Context, roomID, connID string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE room_players
		SET disconnected_at = NOW()
		WHERE room_id = $1 AND conn_id = $2 AND disconnected_at IS NULL
	`, roomID, connID)
	return err
}
