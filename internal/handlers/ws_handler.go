package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/Arlan-Askar/Messenger_Hub/internal/realtime"
	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	jwtutil "github.com/Arlan-Askar/Messenger_Hub/pkg/jwt"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatHandler owns the push channel: it authenticates the upgrade, registers
// the connection and drives the inbound command loop. All mutations go through
// the engines; success events come back through the dispatcher.
type ChatHandler struct {
	Messages  *services.MessageService
	Registry  *realtime.Registry
	JWTSecret string
}

func NewChatHandler(messages *services.MessageService, registry *realtime.Registry, jwtSecret string) *ChatHandler {
	return &ChatHandler{Messages: messages, Registry: registry, JWTSecret: jwtSecret}
}

// ChatWebSocketHandler upgrades the connection and serves it until disconnect.
// The token handshake replaces a separate login frame: registration happens on
// upgrade, and a later connect for the same user displaces this one.
func (h *ChatHandler) ChatWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.Warnf("WebSocket auth failed: %v", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	channel := realtime.NewWSChannel(conn)
	h.Registry.Register(userID, channel)
	logger.Log.Infof("WebSocket connected: %s", userID)

	defer func() {
		h.Registry.Unregister(channel)
		conn.Close()
		logger.Log.Infof("WebSocket disconnected: %s", userID)
	}()

	for {
		var envelope models.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			break
		}
		h.handleCommand(r.Context(), userID, channel, envelope)
	}
}

// handleCommand dispatches one inbound frame. Engine failures are reported
// only to the originating connection as an error event.
func (h *ChatHandler) handleCommand(ctx context.Context, userID string, channel realtime.Channel, envelope models.Envelope) {
	var err error

	switch envelope.Event {
	case models.EventSendMessage:
		var cmd models.SendMessageCommand
		if err = json.Unmarshal(envelope.Data, &cmd); err == nil {
			// The authenticated id is the sender; a senderId in the payload is
			// ignored rather than trusted.
			_, err = h.Messages.SendMessage(ctx, userID, cmd.FriendID, cmd.Content)
		}

	case models.EventRevokeMessage:
		var cmd models.MessageCommand
		if err = json.Unmarshal(envelope.Data, &cmd); err == nil {
			err = h.Messages.RevokeMessage(ctx, cmd.MessageID, userID)
		}

	case models.EventDeleteMessage:
		var cmd models.MessageCommand
		if err = json.Unmarshal(envelope.Data, &cmd); err == nil {
			err = h.Messages.DeleteMessage(ctx, cmd.MessageID, userID)
		}

	case models.EventMarkRead:
		var cmd models.MarkReadCommand
		if err = json.Unmarshal(envelope.Data, &cmd); err == nil {
			err = h.Messages.MarkRead(ctx, userID, cmd.FriendID)
		}

	default:
		logger.Log.Warnf("Unknown websocket event %q from %s", envelope.Event, userID)
		return
	}

	if err != nil {
		logger.Log.Warnf("Command %s from %s failed: %v", envelope.Event, userID, err)
		if sendErr := channel.Send(models.EventError, models.ErrorEvent{Message: err.Error()}); sendErr != nil {
			logger.Log.Warnf("Failed to report error to %s: %v", userID, sendErr)
		}
	}
}
