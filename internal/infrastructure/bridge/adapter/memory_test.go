package adapter

import (
	"context"
	"testing"
)

func TestMemoryBus(t *testing.T) {
	t.Run("publisher receives its own publication", func(t *testing.T) {
		bus := NewMemoryBus()
		var got []byte
		bus.Subscribe("events", func(ctx context.Context, payload []byte) {
			got = payload
		})

		if err := bus.Publish(context.Background(), "events", []byte("hello")); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if string(got) != "hello" {
			t.Errorf("handler received %q, want hello", got)
		}
	})

	t.Run("per-channel publish order is preserved", func(t *testing.T) {
		bus := NewMemoryBus()
		var got []string
		bus.Subscribe("events", func(ctx context.Context, payload []byte) {
			got = append(got, string(payload))
		})

		for _, msg := range []string{"a", "b", "c"} {
			_ = bus.Publish(context.Background(), "events", []byte(msg))
		}
		if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
			t.Errorf("delivery order = %v, want [a b c]", got)
		}
	})

	t.Run("channels are isolated", func(t *testing.T) {
		bus := NewMemoryBus()
		calls := 0
		bus.Subscribe("one", func(ctx context.Context, payload []byte) { calls++ })

		_ = bus.Publish(context.Background(), "two", []byte("x"))
		if calls != 0 {
			t.Errorf("handler on channel one called %d times for channel two", calls)
		}
	})

	t.Run("all handlers on a channel are invoked", func(t *testing.T) {
		bus := NewMemoryBus()
		calls := 0
		bus.Subscribe("events", func(ctx context.Context, payload []byte) { calls++ })
		bus.Subscribe("events", func(ctx context.Context, payload []byte) { calls++ })

		_ = bus.Publish(context.Background(), "events", []byte("x"))
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("never degraded", func(t *testing.T) {
		bus := NewMemoryBus()
		if bus.Degraded() {
			t.Error("memory bus must not report degraded")
		}
	})

	t.Run("close drops subscriptions", func(t *testing.T) {
		bus := NewMemoryBus()
		calls := 0
		bus.Subscribe("events", func(ctx context.Context, payload []byte) { calls++ })
		if err := bus.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		_ = bus.Publish(context.Background(), "events", []byte("x"))
		bus.Subscribe("events", func(ctx context.Context, payload []byte) { calls++ })
		_ = bus.Publish(context.Background(), "events", []byte("x"))
		if calls != 0 {
			t.Errorf("calls after close = %d, want 0", calls)
		}
	})
}
