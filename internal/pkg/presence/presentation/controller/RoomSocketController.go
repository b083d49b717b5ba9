package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-roomcast/internal/infrastructure/realtime"
	presence "go-roomcast/internal/pkg/presence/application/domain"
	"go-roomcast/internal/pkg/presence/application/gateway"
	"go-roomcast/internal/pkg/presence/application/usecase"
)

// RoomSocketController handles the websocket endpoint for realtime presence
// and notification traffic. The transport layer upstream is trusted to have
// validated the user identity: the controller performs no credential checks.
type RoomSocketController struct {
	registry        *realtime.Registry
	gateway         *gateway.Gateway
	inflightTimeout time.Duration
}

func NewRoomSocketController(registry *realtime.Registry, gw *gateway.Gateway) *RoomSocketController {
	return &RoomSocketController{
		registry:        registry,
		gateway:         gw,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type           string         `json:"type"`
	RoomID         string         `json:"room_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	Role           *string        `json:"role,omitempty"`
	Title          string         `json:"title,omitempty"`
	Message        string         `json:"message,omitempty"`
	Kind           string         `json:"kind,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	NotificationID string         `json:"notification_id,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	RoomID         string `json:"room_id,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	Recipients     int    `json:"recipients,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *RoomSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		username := c.Query("username")
		if username == "" {
			username = userID
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.registry.Attach(conn.ID, userID, username, conn)
		conn.Start()
		defer func() {
			// Cleanup path: must run even on abnormal closure, and a repeat
			// call is a no-op once the entry is discarded.
			ctl.gateway.Disconnect(c.Request.Context(), conn.ID)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(c, conn, frame)
			case "send-notification":
				ctl.handleSendNotification(c, conn, userID, frame)
			case "mark-as-read":
				ctl.handleMarkAsRead(c, conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *RoomSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.RoomID == "" {
		ctl.replyError(conn, "bad_request", "room_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.gateway.Join(ctx, conn.ID, frame.RoomID, frame.Role, frame.Metadata); err != nil {
		ctl.handleGatewayError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "joined", RoomID: frame.RoomID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *RoomSocketController) handleLeave(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.RoomID == "" {
		ctl.replyError(conn, "bad_request", "room_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	// Leave is a cleanup path and never surfaces an error to the client.
	ctl.gateway.Leave(ctx, conn.ID, frame.RoomID)

	if payload, err := json.Marshal(ackFrame{Type: "left", RoomID: frame.RoomID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *RoomSocketController) handleSendNotification(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	records, err := ctl.gateway.SendNotification(ctx, usecase.SendNotificationInput{
		SenderID:     userID,
		TargetUserID: frame.UserID,
		TargetRoomID: frame.RoomID,
		Title:        frame.Title,
		Message:      frame.Message,
		Kind:         presence.NotificationKind(frame.Kind),
		Metadata:     frame.Metadata,
	})
	if err != nil {
		ctl.handleGatewayError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "sent", RoomID: frame.RoomID, Recipients: len(records)}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *RoomSocketController) handleMarkAsRead(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.NotificationID == "" {
		ctl.replyError(conn, "bad_request", "notification_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.gateway.MarkAsRead(ctx, userID, frame.NotificationID); err != nil {
		ctl.handleGatewayError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "read", NotificationID: frame.NotificationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *RoomSocketController) handleGatewayError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, presence.ErrRoomNotFound):
		ctl.replyError(conn, "room_not_found", "room does not exist")
	case errors.Is(err, presence.ErrNotificationNotFound):
		ctl.replyError(conn, "not_found", "notification does not exist or is not yours")
	case errors.Is(err, usecase.ErrStorageUnavailable):
		ctl.replyError(conn, "storage_unavailable", "temporary storage failure, retry with backoff")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *RoomSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
