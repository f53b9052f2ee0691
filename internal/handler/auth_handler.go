package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"league-platform/internal/middleware"
	"league-platform/internal/model"
	"league-platform/internal/service"
	"league-platform/pkg/apierror"
)

type magicLinkFlow interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (model.LoginResult, error)
}

type sessionIssuer interface {
	IssueForUser(ctx context.Context, userID int64, requested *model.ScopeRef) (model.ContextTokenResponse, error)
}

type AuthHandler struct {
	magicLinks magicLinkFlow
	sessions   sessionIssuer
}

func NewAuthHandler(magicLinks magicLinkFlow, sessions sessionIssuer) *AuthHandler {
	return &AuthHandler{magicLinks: magicLinks, sessions: sessions}
}

// RequestMagicLink answers {"success":true} for any well-formed email, known
// or not.
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var payload model.MagicLinkRequest
	if err := decodeJSON(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, apierror.BadRequest("a valid email is required", err.Error()))
		return
	}

	r = withActor(r)
	if err := h.magicLinks.Issue(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MagicLinkResponse{Success: true})
}

func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	var payload model.MagicLinkVerifyRequest
	if err := decodeJSON(r, &payload, false); err != nil {
		writeError(w, err)
		return
	}
	// A malformed token can never match a stored one.
	if err := payload.Validate(); err != nil {
		writeError(w, service.ErrMagicLinkNotFound)
		return
	}

	r = withActor(r)
	result, err := h.magicLinks.Verify(r.Context(), payload.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	user := result.User
	writeJSON(w, http.StatusOK, model.MagicLinkResponse{Success: true, Token: result.Token, User: &user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	roles := session.Evaluator.Roles()
	if roles == nil {
		roles = []model.RoleGrant{}
	}

	writeSuccess(w, http.StatusOK, model.SessionInfo{
		User: model.AuthUser{
			ID:         session.UserID(),
			Email:      session.Email(),
			Name:       session.Claims.Name,
			SystemRole: session.SystemRole(),
		},
		Roles:         roles,
		ActiveContext: session.Evaluator.ActiveContext(),
		ExpiresAt:     session.Claims.ExpiresAt,
	}, nil)
}

// SwitchContext issues a token with freshly built organizational claims,
// optionally activating the requested scope.
func (h *AuthHandler) SwitchContext(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.SwitchContextRequest
	if err := decodeJSON(r, &payload, true); err != nil {
		writeError(w, err)
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, apierror.BadRequest("invalid scope", err.Error()))
		return
	}

	userID, err := strconv.ParseInt(session.UserID(), 10, 64)
	if err != nil {
		writeError(w, apierror.Unauthorized("token subject is not a user id"))
		return
	}

	r = withActor(r)
	resp, err := h.sessions.IssueForUser(r.Context(), userID, payload.Scope())
	if errors.Is(err, model.ErrUserNotFound) {
		writeError(w, apierror.Unauthorized("user no longer exists"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}
