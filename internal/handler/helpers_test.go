package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"league-platform/internal/middleware"
	"league-platform/internal/model"
	"league-platform/internal/rbac"
	"league-platform/internal/token"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func jsonRequest(method string, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, claims token.Claims) *http.Request {
	session := &middleware.Session{Claims: claims, Evaluator: rbac.New(claims)}
	return req.WithContext(middleware.ContextWithSession(req.Context(), session))
}

func coachClaims() token.Claims {
	return token.Claims{
		UserID:     "17",
		Email:      "alice@example.com",
		Name:       "Alice",
		ExpiresAt:  1709380800,
		SystemRole: model.SystemRoleUser,
		Roles: []model.RoleGrant{
			model.NewLeagueGrant(model.RoleLeagueAdmin, 7, "North League"),
			model.NewClubGrant(model.RoleCoach, 42, "Tigers", 7),
		},
	}
}
