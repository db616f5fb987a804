package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	jwtutil "github.com/Arlan-Askar/Messenger_Hub/pkg/jwt"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/middleware"
	"github.com/gorilla/mux"
)

// UserHandler exposes the identity collaborator: register, login, lookup.
type UserHandler struct {
	Service   *services.UserService
	JWTSecret string
}

func NewUserHandler(service *services.UserService, jwtSecret string) *UserHandler {
	return &UserHandler{Service: service, JWTSecret: jwtSecret}
}

// RegisterUserHandler creates an account and issues a token for it.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.RegisterUser(r.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		logger.Log.Warnf("Failed to register user: %v", err)
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Name, h.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Log.Errorf("Failed to issue token: %v", err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user.Public(),
		"token": token,
	})
}

// LoginUserHandler verifies credentials and issues a token.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), body.Email, body.Password)
	if err != nil {
		logger.Log.Warnf("Failed login attempt for %s", body.Email)
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Name, h.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Log.Errorf("Failed to issue token: %v", err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user.Public(),
		"token": token,
	})
}

// SearchUsersHandler finds users by a name or email fragment.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.Service.SearchUsers(r.Context(), r.URL.Query().Get("q"), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to search users: %v", err)
		http.Error(w, "Failed to search users", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetUserHandler resolves a user id into its public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user.Public()})
}
