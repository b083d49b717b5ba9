package port

import (
	"context"
	"errors"
)

// Handler is invoked once per message received on a subscribed channel.
// Handlers must not block for long: per-channel delivery is sequential and a
// slow handler delays everything behind it on the same bus.
type Handler func(ctx context.Context, payload []byte)

// Bus is the cross-process broadcast channel connecting all server
// instances. A publication is delivered to every instance's subscribers,
// including the publisher's own (uniform local delivery: callers never
// special-case "fan out locally AND remotely").
//
// Publish returns once the broadcast is accepted by the transport, not once
// every subscriber received it; delivery to remote instances is asynchronous
// and best-effort. Per-channel delivery preserves publish order from a single
// publisher; no order is guaranteed across channels.
//
// Loss of the underlying transport degrades the bus to single-instance mode:
// publications keep reaching local subscribers, remote delivery is suspended,
// and Degraded reports true until connectivity returns. Reconnection is
// automatic; callers only ever observe the degraded flag.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(channel string, h Handler)
	Degraded() bool
	Close() error
}

// ErrDegraded signals that the bus transport is unreachable and the instance
// is serving locally-registered connections only.
var ErrDegraded = errors.New("bridge: degraded, local-only delivery")
