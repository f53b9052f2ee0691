package handler

import (
	"log/slog"
	"net/http"

	"league-platform/internal/token"
)

type keySetPublisher interface {
	JWKS() (token.JWKS, error)
}

type JWKSHandler struct {
	keys keySetPublisher
}

func NewJWKSHandler(keys keySetPublisher) *JWKSHandler {
	return &JWKSHandler{keys: keys}
}

// Get serves the public signing keys. Without RSA material it answers 503 so
// verifiers retry later instead of caching an empty set.
func (h *JWKSHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.keys.JWKS()
	if err != nil {
		slog.WarnContext(r.Context(), "jwks unavailable", "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, set)
}
