package service

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers magic links. Rendering and transport live outside this
// service.
type Mailer interface {
	SendMagicLink(ctx context.Context, to string, link string, expiresAt time.Time) error
}

// LogMailer writes links to the log instead of sending them. It is the
// default when no mail transport is wired.
type LogMailer struct{}

func (LogMailer) SendMagicLink(ctx context.Context, to string, link string, expiresAt time.Time) error {
	slog.InfoContext(ctx, "magic link issued", "email", to, "link", link, "expires_at", expiresAt)
	return nil
}
