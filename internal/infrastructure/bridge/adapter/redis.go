package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"go-roomcast/internal/infrastructure/bridge/port"
)

const healthCheckPeriod = 5 * time.Second

// RedisBus implements port.Bus over redis pub/sub. The publisher receives its
// own publications through its own subscription, so local and remote delivery
// share one path. A health loop flips the degraded flag when redis stops
// answering pings; while degraded, publications are looped back to local
// handlers directly so the instance keeps serving its own sockets.
type RedisBus struct {
	client *redis.Client
	pubsub *redis.PubSub
	log    zerolog.Logger

	mu       sync.RWMutex
	handlers map[string][]port.Handler

	degraded atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRedisBus connects to the given redis URL and starts the receive and
// health loops. The connection is process-wide shared state: create one bus
// at startup and close it at shutdown.
func NewRedisBus(url string, log zerolog.Logger) (*RedisBus, error) {
	if url == "" {
		return nil, errors.New("bridge: redis url is empty")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("bridge: ping: %w", err)
	}

	loopCtx, loopCancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client:   client,
		pubsub:   client.Subscribe(loopCtx),
		log:      log.With().Str("component", "bridge").Logger(),
		handlers: make(map[string][]port.Handler),
		cancel:   loopCancel,
		done:     make(chan struct{}),
	}

	go b.receiveLoop(loopCtx)
	go b.healthLoop(loopCtx)
	return b, nil
}

var _ port.Bus = (*RedisBus)(nil)

// Subscribe registers h for channel. Safe to call at any time; the underlying
// redis subscription is added on first handler for a channel.
func (b *RedisBus) Subscribe(channel string, h port.Handler) {
	b.mu.Lock()
	first := len(b.handlers[channel]) == 0
	b.handlers[channel] = append(b.handlers[channel], h)
	b.mu.Unlock()

	if first {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := b.pubsub.Subscribe(ctx, channel); err != nil {
			b.markDegraded(err)
		}
	}
}

// Publish broadcasts payload on channel. It never fails outright on transport
// loss: the bus flips to degraded and delivers to local handlers directly, so
// the caller's delivery path stays uniform.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if b.degraded.Load() {
		b.dispatch(ctx, channel, payload)
		return nil
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		b.markDegraded(err)
		b.dispatch(ctx, channel, payload)
		return nil
	}
	return nil
}

// Degraded reports whether the transport is currently unreachable.
func (b *RedisBus) Degraded() bool {
	return b.degraded.Load()
}

// Close stops the loops and releases the redis connections.
func (b *RedisBus) Close() error {
	b.cancel()
	<-b.done
	_ = b.pubsub.Close()
	return b.client.Close()
}

// receiveLoop dispatches inbound messages sequentially, which preserves
// per-channel publish order from a single publisher. go-redis resubscribes
// transparently after a dropped connection.
func (b *RedisBus) receiveLoop(ctx context.Context) {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (b *RedisBus) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := b.client.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				b.markDegraded(err)
			} else if b.degraded.CompareAndSwap(true, false) {
				b.log.Info().Msg("bridge transport recovered, cross-instance delivery resumed")
			}
		}
	}
}

func (b *RedisBus) dispatch(ctx context.Context, channel string, payload []byte) {
	b.mu.RLock()
	handlers := b.handlers[channel]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, payload)
	}
}

func (b *RedisBus) markDegraded(err error) {
	if b.degraded.CompareAndSwap(false, true) {
		b.log.Warn().Err(err).Msg("bridge transport unreachable, serving local connections only")
	}
}
