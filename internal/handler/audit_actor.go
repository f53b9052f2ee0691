package handler

import (
	"net/http"

	"league-platform/internal/middleware"
	"league-platform/internal/model"
	"league-platform/internal/service"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = session.UserID()
	actor.Email = session.Email()

	return actor
}

// withActor returns r with its audit identity attached for the services.
func withActor(r *http.Request) *http.Request {
	return r.WithContext(service.ContextWithActor(r.Context(), actorFromRequest(r)))
}
