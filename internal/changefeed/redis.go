package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"techcrew/internal/logger"
	"techcrew/internal/models"
)

// ConnectRedis opens a client and checks the connection.
func ConnectRedis(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", addr))
	return client, nil
}

type envelope struct {
	Origin string        `json:"origin"`
	Change models.Change `json:"change"`
}

// RedisBridge shares changes between service instances over a Redis
// pub/sub channel. Messages carry the sending instance's origin so an
// instance never re-delivers its own changes.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	log     *logger.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log *logger.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		log:     log,
	}
}

func (b *RedisBridge) Send(ctx context.Context, c models.Change) error {
	payload, err := json.Marshal(envelope{Origin: b.origin, Change: c})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change to %s: %w", b.channel, err)
	}
	return nil
}

// Run relays changes from other instances into the local hub until ctx
// is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info("REDIS", fmt.Sprintf("Listening for changes on %s", b.channel))

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("REDIS", fmt.Sprintf("Ignoring malformed change message: %v", err))
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Broadcast(env.Change)
		}
	}
}
