package middleware

import (
	"encoding/json"
	"net/http"

	"go-user-auth/internal/model"
)

func writeEnvelope(w http.ResponseWriter, status int, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{Code: code, Message: message})
}
