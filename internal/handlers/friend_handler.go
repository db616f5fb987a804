package handlers

import (
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints related to friend requests and the
// friend list.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler allows a user to send a friend request.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to send friend request")
		return
	}

	receiverID := mux.Vars(r)["id"]
	request, err := h.Service.SendFriendRequest(r.Context(), claims.UserID, receiverID)
	if err != nil {
		logger.Log.Warnf("Failed to send friend request: %v", err)
		respondError(w, err)
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", claims.UserID, receiverID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "request": request})
}

// GetFriendsHandler returns the caller's friend records.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.Service.Friends(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch friends for user %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get friends", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// GetIncomingRequestsHandler shows pending requests addressed to the caller.
func (h *FriendHandler) GetIncomingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.Service.IncomingRequests(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to get incoming requests: %v", err)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// GetOutgoingRequestsHandler shows pending requests the caller has sent.
func (h *FriendHandler) GetOutgoingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.Service.OutgoingRequests(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to get outgoing requests: %v", err)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// ApproveFriendRequestHandler accepts a pending friend request.
func (h *FriendHandler) ApproveFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID := mux.Vars(r)["id"]
	if err := h.Service.ApproveFriendRequest(r.Context(), requestID, claims.UserID); err != nil {
		logger.Log.Warnf("Failed to approve friend request %s: %v", requestID, err)
		respondError(w, err)
		return
	}

	logger.Log.Infof("User %s approved friend request %s", claims.UserID, requestID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeclineFriendRequestHandler rejects a pending friend request.
func (h *FriendHandler) DeclineFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID := mux.Vars(r)["id"]
	if err := h.Service.DeclineFriendRequest(r.Context(), requestID, claims.UserID); err != nil {
		logger.Log.Warnf("Failed to decline friend request %s: %v", requestID, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
