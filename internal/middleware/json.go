package middleware

import (
	"encoding/json"
	"net/http"

	"league-platform/internal/model"
)

// writeErrorEnvelope writes the API error envelope for the codes produced by
// middleware.
func writeErrorEnvelope(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
