package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"league-platform/internal/metrics"
	"league-platform/internal/model"
	"league-platform/internal/rbac"
	"league-platform/internal/token"
)

type tokenDecoder interface {
	Decode(raw string) (token.Claims, error)
}

type contextKey string

const sessionContextKey contextKey = "auth_session"

// Session is the verified identity of a request.
type Session struct {
	Claims    token.Claims
	Evaluator *rbac.Evaluator
}

func (s *Session) UserID() string {
	return s.Claims.UserID
}

func (s *Session) Email() string {
	return s.Claims.Email
}

func (s *Session) SystemRole() model.SystemRole {
	return s.Evaluator.SystemRole()
}

type Authenticator struct {
	decoder tokenDecoder
}

func NewAuthenticator(decoder tokenDecoder) *Authenticator {
	return &Authenticator{decoder: decoder}
}

// RequireAuth verifies the bearer token and stores a *Session in the request
// context. Any token fault is one opaque 401; broken key material is a 500.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			metrics.TokenVerified("missing")
			writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := a.decoder.Decode(raw)
		switch {
		case errors.Is(err, token.ErrConfiguration):
			metrics.TokenVerified("misconfigured")
			slog.ErrorContext(r.Context(), "token verification misconfigured", "error", err)
			writeErrorEnvelope(w, http.StatusInternalServerError, "AUTH_MISCONFIGURED", "authentication is not available")
			return
		case err != nil:
			metrics.TokenVerified("invalid")
			writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		metrics.TokenVerified("valid")
		session := &Session{Claims: claims, Evaluator: rbac.New(claims)}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperAdmin must run after RequireAuth.
func (a *Authenticator) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if !session.Evaluator.IsSuperAdmin() {
			writeErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCan rejects requests whose token holds no role allowed to perform
// action in any scope. Scope-specific checks belong in the handler.
func (a *Authenticator) RequireCan(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if !session.Evaluator.Can(action) {
				writeErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	return session, ok && session != nil
}

// ContextWithSession is for handler tests that bypass RequireAuth.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}
