package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/piemenu/pkg/cache"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// DefaultChannel is the Redis channel update events are published on.
const DefaultChannel = "piemenu:updates"

// RedisConfig configures a RedisBus.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Channel  string `toml:"channel"`
}

// RedisBus broadcasts update events over Redis pub/sub as JSON.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *log.Logger
	owned   bool
}

// NewRedisBus connects to Redis and verifies the connection.
func NewRedisBus(ctx context.Context, cfg RedisConfig, logger *log.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	b := NewRedisBusFromClient(client, cfg.Channel, logger)
	b.owned = true
	return b, nil
}

// NewRedisBusFromClient wraps an existing client. Close does not close it.
func NewRedisBusFromClient(client *redis.Client, channel string, logger *log.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &RedisBus{client: client, channel: channel, logger: logger}
}

// Publish implements Bus. Transient network failures are retried.
func (b *RedisBus) Publish(ctx context.Context, ev provider.UpdateEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode update event: %w", err)
	}
	return cache.RetryWithBackoff(ctx, func() error {
		if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
}

// Subscribe implements Bus. Malformed payloads are logged and skipped.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan provider.UpdateEvent, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan provider.UpdateEvent, SubscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev provider.UpdateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("dropping malformed update event", "channel", msg.Channel, "err", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Channel returns the Redis channel name.
func (b *RedisBus) Channel() string { return b.channel }

// Close closes the client if the bus created it.
func (b *RedisBus) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}
