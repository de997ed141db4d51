package live

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channel = "batchbook:changes"

// RedisBridge publishes notifications on a Redis channel and replays every
// message it receives into the local hub, so all API instances see writes
// made by any of them.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub}
}

// Notify publishes kind. When publishing fails the local hub is still told so
// subscribers on this instance are not left stale.
func (b *RedisBridge) Notify(ctx context.Context, kind Kind) {
	if err := b.rdb.Publish(ctx, channel, string(kind)).Err(); err != nil {
		slog.Warn("failed to publish change", "kind", kind, "error", err)
		b.hub.broadcast(kind)
	}
}

// Run relays published changes to the hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	msgs := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			kind := Kind(msg.Payload)
			if !kind.Valid() {
				slog.Warn("ignoring unknown change kind", "kind", msg.Payload)
				continue
			}

			b.hub.broadcast(kind)
		}
	}
}
