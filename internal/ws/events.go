package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/cat-in-the-dark/MessageBus/internal/app"
)

// Event is one room lifecycle change, published for external consumers.
type Event struct {
	Room   string `json:"room"`
	Event  string `json:"event"` // created | ready | played | removed
	Client string `json:"client,omitempty"`
}

// RedisFeed publishes lifecycle events on a redis channel. Fire and
// forget: a nil feed or a failed publish never touches the connect path.
type RedisFeed struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

// NewRedisFeed connects to redis and verifies connectivity
func NewRedisFeed(ctx context.Context, cfg app.Config, log *slog.Logger) (*RedisFeed, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisFeed{rdb: rdb, channel: cfg.RedisEvents, log: log}, nil
}

// Publish sends the event on its own goroutine and logs failures.
func (f *RedisFeed) Publish(e Event) {
	if f == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		raw, _ := json.Marshal(e)
		if err := f.rdb.Publish(ctx, f.channel, raw).Err(); err != nil {
			f.log.Error("feed.publish", "event", e.Event, "room", e.Room, "err", err)
		}
	}()
}

// Close shuts down the redis connection
func (f *RedisFeed) Close() {
	if f != nil {
		_ = f.rdb.Close()
	}
}
