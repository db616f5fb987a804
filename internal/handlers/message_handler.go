package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/middleware"
	"github.com/gorilla/mux"
)

// MessageHandler exposes the fetch-style message operations used by poll-mode
// clients and the initial load.
type MessageHandler struct {
	Service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{Service: service}
}

// GetConversationHandler returns the caller's view of a conversation sorted
// by (timestamp, id).
func (h *MessageHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendID := mux.Vars(r)["friendId"]
	messages, err := h.Service.Conversation(r.Context(), claims.UserID, friendID)
	if err != nil {
		logger.Log.Errorf("Failed to get conversation: %v", err)
		http.Error(w, "Failed to get messages", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// SendMessageHandler appends a message; this is the poll transport's send path.
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	friendID := mux.Vars(r)["friendId"]
	msg, err := h.Service.SendMessage(r.Context(), claims.UserID, friendID, body.Content)
	if err != nil {
		logger.Log.Warnf("Failed to send message from %s to %s: %v", claims.UserID, friendID, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"message": msg})
}

// MarkReadHandler zeroes the caller's unread counter for a peer.
func (h *MessageHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendID := mux.Vars(r)["friendId"]
	if err := h.Service.MarkRead(r.Context(), claims.UserID, friendID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// RevokeMessageHandler tombstones a message within the revocation window.
func (h *MessageHandler) RevokeMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messageID := mux.Vars(r)["messageId"]
	if err := h.Service.RevokeMessage(r.Context(), messageID, claims.UserID); err != nil {
		logger.Log.Warnf("Failed to revoke message %s: %v", messageID, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteMessageHandler hides a message from the caller's view.
func (h *MessageHandler) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messageID := mux.Vars(r)["messageId"]
	if err := h.Service.DeleteMessage(r.Context(), messageID, claims.UserID); err != nil {
		logger.Log.Warnf("Failed to delete message %s: %v", messageID, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
