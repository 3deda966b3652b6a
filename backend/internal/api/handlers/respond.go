package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.Error{Error: msg})
}
