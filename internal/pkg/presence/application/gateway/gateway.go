package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	bridgeport "go-roomcast/internal/infrastructure/bridge/port"
	"go-roomcast/internal/infrastructure/realtime"
	presence "go-roomcast/internal/pkg/presence/application/domain"
	"go-roomcast/internal/pkg/presence/application/usecase"
)

const disconnectLeaveTimeout = 5 * time.Second

// Gateway is the protocol-facing coordinator for room presence and
// notification delivery. It validates requests against the durable Presence
// Store, updates the process-local Connection Registry, publishes events on
// the Pub/Sub Bridge, and relays inbound bridge events to locally-registered
// connections. It always publishes and always also receives its own
// publication, so local and remote fan-out share one delivery path.
type Gateway struct {
	registry *realtime.Registry
	bus      bridgeport.Bus

	joinUC     *usecase.JoinRoomUseCase
	leaveUC    *usecase.LeaveRoomUseCase
	sendUC     *usecase.SendNotificationUseCase
	markReadUC *usecase.MarkAsReadUseCase

	log zerolog.Logger
}

func New(
	registry *realtime.Registry,
	bus bridgeport.Bus,
	joinUC *usecase.JoinRoomUseCase,
	leaveUC *usecase.LeaveRoomUseCase,
	sendUC *usecase.SendNotificationUseCase,
	markReadUC *usecase.MarkAsReadUseCase,
	log zerolog.Logger,
) *Gateway {
	return &Gateway{
		registry:   registry,
		bus:        bus,
		joinUC:     joinUC,
		leaveUC:    leaveUC,
		sendUC:     sendUC,
		markReadUC: markReadUC,
		log:        log.With().Str("component", "gateway").Logger(),
	}
}

// Start registers the bridge subscriptions. Call once after construction,
// before any connection is attached.
func (g *Gateway) Start() {
	g.bus.Subscribe(ChannelUserJoined, g.relayUserEvent("user-joined"))
	g.bus.Subscribe(ChannelUserLeft, g.relayUserEvent("user-left"))
	g.bus.Subscribe(ChannelNotification, g.relayNotification)
}

// Degraded reports whether the bridge transport is down and the instance is
// serving locally-registered connections only.
func (g *Gateway) Degraded() bool {
	return g.bus.Degraded()
}

// Join opens (or reuses) the durable membership for the connection's user,
// then adds the room to the connection's registry entry. The registry add
// happens regardless of whether a new durable row was created: a user may
// hold several sockets in the same room. Publishes user-joined.
func (g *Gateway) Join(ctx context.Context, connID, roomID string, role *string, metadata map[string]any) (*presence.RoomMembership, error) {
	userID, username, ok := g.registry.UserOf(connID)
	if !ok {
		return nil, fmt.Errorf("connection %s is not attached", connID)
	}

	membership, err := g.joinUC.Execute(ctx, usecase.JoinRoomInput{
		UserID:   userID,
		RoomID:   roomID,
		Role:     role,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	g.registry.Join(connID, roomID)
	g.publish(ctx, ChannelUserJoined, userEvent{RoomID: roomID, UserID: userID, Username: username})
	return membership, nil
}

// Leave removes the room from the connection's registry entry. When this was
// the user's last local connection in the room, the durable membership is
// closed as well; a still-open session on another instance will be reopened
// by that client's next join (known at-least-once tradeoff). Leaving a room
// the connection never joined is a no-op. Leave is a cleanup path: failures
// are logged for reconciliation, never returned.
func (g *Gateway) Leave(ctx context.Context, connID, roomID string) {
	g.leaveRoom(ctx, connID, roomID)
}

// Disconnect performs the leave effect for every room the connection joined,
// then discards the registry entry. It is invoked on any socket closure and
// must run to completion even when the transport context is already gone, or
// the Presence Store would retain stale active memberships; the context is
// therefore detached from transport cancellation. Safe to call repeatedly:
// once the entry is gone, there is nothing left to do.
func (g *Gateway) Disconnect(ctx context.Context, connID string) {
	ctx = context.WithoutCancel(ctx)
	for _, roomID := range g.registry.Rooms(connID) {
		leaveCtx, cancel := context.WithTimeout(ctx, disconnectLeaveTimeout)
		g.leaveRoom(leaveCtx, connID, roomID)
		cancel()
	}
	g.registry.Detach(connID)
}

// SendNotification resolves the recipient set (a snapshot, for room targets),
// durably appends one ledger record per recipient, then publishes one
// notification event per recipient. Append-before-publish is the at-least-
// once contract: a live event may be delayed or lost, a record never is.
func (g *Gateway) SendNotification(ctx context.Context, in usecase.SendNotificationInput) ([]presence.NotificationRecord, error) {
	records, err := g.sendUC.Execute(ctx, in)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		g.publish(ctx, ChannelNotification, notificationEvent{
			ID:              record.ID,
			RecipientUserID: record.RecipientUserID,
			Title:           record.Title,
			Message:         record.Message,
			Kind:            string(record.Kind),
			RoomID:          record.RoomID,
			Metadata:        record.Metadata,
			CreatedAt:       record.CreatedAt,
		})
	}
	return records, nil
}

// MarkAsRead sets readAt on the user's notification. Idempotent; unknown or
// foreign notifications yield presence.ErrNotificationNotFound.
func (g *Gateway) MarkAsRead(ctx context.Context, userID, notificationID string) (*presence.NotificationRecord, error) {
	return g.markReadUC.Execute(ctx, usecase.MarkAsReadInput{UserID: userID, NotificationID: notificationID})
}

func (g *Gateway) leaveRoom(ctx context.Context, connID, roomID string) {
	userID, username, ok := g.registry.UserOf(connID)
	if !ok {
		return
	}

	removed, remaining := g.registry.Leave(connID, roomID)
	if !removed {
		return
	}

	// Last local connection of this user in the room closes the durable
	// membership. Cross-process last-leaver detection is out of scope; this
	// local signal is at-least-once.
	if remaining == 0 {
		if err := g.leaveUC.Execute(ctx, usecase.LeaveRoomInput{UserID: userID, RoomID: roomID}); err != nil {
			g.log.Error().Err(err).
				Str("user_id", userID).
				Str("room_id", roomID).
				Msg("failed to close membership, left for reconciliation sweep")
		}
	}

	g.publish(ctx, ChannelUserLeft, userEvent{RoomID: roomID, UserID: userID, Username: username})
}

func (g *Gateway) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		g.log.Error().Err(err).Str("channel", channel).Msg("failed to encode bridge event")
		return
	}
	if err := g.bus.Publish(ctx, channel, data); err != nil {
		g.log.Warn().Err(err).Str("channel", channel).Msg("bridge publish failed")
	}
}

// relayUserEvent delivers an inbound user-joined/user-left bridge event to
// every locally-registered connection in the event's room.
func (g *Gateway) relayUserEvent(frameType string) bridgeport.Handler {
	return func(ctx context.Context, payload []byte) {
		var ev userEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			g.log.Warn().Err(err).Str("frame", frameType).Msg("dropping malformed bridge event")
			return
		}
		frame, err := json.Marshal(userFrame{Type: frameType, userEvent: ev})
		if err != nil {
			g.log.Error().Err(err).Str("frame", frameType).Msg("failed to encode outbound frame")
			return
		}
		for _, s := range g.registry.RoomSenders(ev.RoomID, "") {
			_ = s.Send(frame)
		}
	}
}

// relayNotification delivers an inbound notification bridge event to every
// locally-registered connection of the recipient.
func (g *Gateway) relayNotification(ctx context.Context, payload []byte) {
	var ev notificationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		g.log.Warn().Err(err).Msg("dropping malformed notification event")
		return
	}
	frame, err := json.Marshal(notificationFrame{Type: "notification", notificationEvent: ev})
	if err != nil {
		g.log.Error().Err(err).Msg("failed to encode outbound notification frame")
		return
	}
	for _, s := range g.registry.UserSenders(ev.RecipientUserID) {
		_ = s.Send(frame)
	}
}
