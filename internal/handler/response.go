package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"league-platform/internal/model"
	"league-platform/internal/token"
	"league-platform/pkg/apierror"
)

const maxBodyBytes = 1 << 16

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	writeJSON(w, status, model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeJSON writes body as is, outside the envelope.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, token.ErrInvalidToken) || errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, token.ErrConfiguration) {
		slog.Error("token configuration error", "error", err.Error())
		body.Code = "AUTH_MISCONFIGURED"
		body.Message = "Authentication is not available"
	} else if errors.Is(err, token.ErrKeyUnavailable) {
		status = http.StatusServiceUnavailable
		body.Code = "KEY_UNAVAILABLE"
		body.Message = "No signing key is published"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrLeagueNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "League not found"
	} else if errors.Is(err, model.ErrClubNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Club not found"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// decodeJSON reads a size-limited JSON body into dst. An empty body leaves
// dst untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apierror.BadRequest("invalid JSON body", "")
	}
	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
