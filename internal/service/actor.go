package service

import (
	"context"

	"league-platform/internal/model"
)

type actorContextKey struct{}

// ContextWithActor attaches the caller's audit identity to ctx.
func ContextWithActor(ctx context.Context, actor model.AuditActor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func actorFromContext(ctx context.Context) model.AuditActor {
	actor, _ := ctx.Value(actorContextKey{}).(model.AuditActor)
	return actor
}
