package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/cementplant-backend/internal/platform/envutil"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

// Bus relays broadcast frames between backend instances.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	StartForwarder(ctx context.Context, onMsg func(msg Message, frame []byte)) error
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects using REDIS_ADDR, REDIS_PASSWORD, REDIS_DB and REDIS_CHANNEL.
func NewRedisBus(log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisBus{
		log:     log.With("service", "RedisPlantBus"),
		rdb:     rdb,
		channel: envutil.String("REDIS_CHANNEL", "plant-data"),
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg Message) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Type: msg.Type, Priority: msg.Priority, Frame: frame})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(msg Message, frame []byte)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil || len(env.Frame) == 0 {
					b.log.Warn("bad redis plant payload", "error", err)
					continue
				}
				onMsg(Message{Type: env.Type, Priority: env.Priority}, env.Frame)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// Publisher is what the pipeline broadcasts through.
type Publisher interface {
	Publish(ctx context.Context, msg Message) (int, error)
}

// Fanout publishes through the bus when one is configured, so every instance
// (including this one) delivers via its forwarder. Without a bus, or when the
// bus rejects the message, it delivers to the local hub directly.
type Fanout struct {
	hub *Hub
	bus Bus
	log *logger.Logger
}

func NewFanout(hub *Hub, bus Bus, log *logger.Logger) *Fanout {
	return &Fanout{hub: hub, bus: bus, log: log.With("component", "RealtimeFanout")}
}

// Start subscribes the local hub to the bus. If the subscription fails the
// bus is dropped and Publish delivers locally from then on. Call it before
// anything publishes.
func (f *Fanout) Start(ctx context.Context) error {
	if f.bus == nil {
		return nil
	}
	err := f.bus.StartForwarder(ctx, func(msg Message, frame []byte) {
		f.hub.BroadcastFrame(msg, frame)
	})
	if err != nil {
		_ = f.bus.Close()
		f.bus = nil
	}
	return err
}

// Publish returns the number of local deliveries; it is zero when the bus
// carries the message.
func (f *Fanout) Publish(ctx context.Context, msg Message) (int, error) {
	if f.bus != nil {
		err := f.bus.Publish(ctx, msg)
		if err == nil {
			return 0, nil
		}
		f.log.Warn("Bus publish failed, delivering locally", "type", msg.Type, "error", err)
	}
	return f.hub.Broadcast(msg)
}

// Hub implements Publisher for single-instance wiring.
func (h *Hub) Publish(_ context.Context, msg Message) (int, error) {
	return h.Broadcast(msg)
}
