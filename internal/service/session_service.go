package service

import (
	"context"
	"fmt"

	"league-platform/internal/metrics"
	"league-platform/internal/model"
	"league-platform/internal/token"
)

// SessionService issues tokens carrying the full organizational context.
type SessionService struct {
	users   UserStore
	builder *ContextBuilder
	codec   *token.Codec
	audit   *AuditService
}

func NewSessionService(users UserStore, builder *ContextBuilder, codec *token.Codec, audit *AuditService) *SessionService {
	return &SessionService{users: users, builder: builder, codec: codec, audit: audit}
}

func (s *SessionService) IssueForUser(ctx context.Context, userID int64, requested *model.ScopeRef) (model.ContextTokenResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.ContextTokenResponse{}, fmt.Errorf("load session user: %w", err)
	}

	org, err := s.builder.Build(ctx, user.ID, requested)
	if err != nil {
		return model.ContextTokenResponse{}, err
	}

	claims := token.Claims{UserID: user.SubjectID(), Email: user.Email, Name: user.DisplayName}.WithOrgContext(org)

	signed, err := s.codec.Encode(claims)
	if err != nil {
		return model.ContextTokenResponse{}, fmt.Errorf("issue session token: %w", err)
	}

	metrics.TokenIssued(string(s.codec.Algorithm()), "context")

	actor := actorFromContext(ctx)
	actor.UserID = user.SubjectID()
	actor.Email = user.Email
	var resource string
	if org.ActiveContext != nil {
		resource = fmt.Sprintf("%s:%d", org.ActiveContext.ScopeType, org.ActiveContext.ScopeID)
	}
	s.audit.Log(ctx, AuditContextSwitched, actor, AuditStatusSuccess, resource, map[string]any{"roles": len(org.Roles)}, "")

	return model.ContextTokenResponse{Token: signed, Context: org}, nil
}
