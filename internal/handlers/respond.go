package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps engine errors onto HTTP statuses and a JSON error body.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, domain.HTTPStatus(err), map[string]string{"error": err.Error()})
}
