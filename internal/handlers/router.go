package handlers

import (
	"github.com/Arlan-Askar/Messenger_Hub/pkg/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every handler into the route table. main and the transport
// tests share this so the surface under test is the real one.
func NewRouter(userH *UserHandler, friendH *FriendHandler, messageH *MessageHandler, chatH *ChatHandler, jwtSecret string) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/users/register", userH.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userH.LoginUserHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	protectedUserRoutes.HandleFunc("/search", userH.SearchUsersHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userH.GetUserHandler).Methods("GET")

	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	protectedFriendRoutes.HandleFunc("", friendH.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/incoming", friendH.GetIncomingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/outgoing", friendH.GetOutgoingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/approve", friendH.ApproveFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests/{id}/decline", friendH.DeclineFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/{id}/request", friendH.SendFriendRequestHandler).Methods("POST")

	protectedMessageRoutes := router.PathPrefix("/messages").Subrouter()
	protectedMessageRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	protectedMessageRoutes.HandleFunc("/{friendId}", messageH.GetConversationHandler).Methods("GET")
	protectedMessageRoutes.HandleFunc("/{friendId}", messageH.SendMessageHandler).Methods("POST")
	protectedMessageRoutes.HandleFunc("/{friendId}/read", messageH.MarkReadHandler).Methods("POST")
	protectedMessageRoutes.HandleFunc("/{friendId}/{messageId}/revoke", messageH.RevokeMessageHandler).Methods("POST")
	protectedMessageRoutes.HandleFunc("/{friendId}/{messageId}", messageH.DeleteMessageHandler).Methods("DELETE")

	// The push channel authenticates via its token query parameter, not the
	// auth middleware, so it stays outside the subrouters.
	router.HandleFunc("/ws", chatH.ChatWebSocketHandler).Methods("GET")

	router.Use(middleware.LoggingMiddleware)

	return router
}
