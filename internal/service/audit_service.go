package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"league-platform/internal/model"
	"league-platform/pkg/apierror"
)

const (
	AuditMagicLinkRequested = "magic_link.requested"
	AuditMagicLinkRedeemed  = "magic_link.redeemed"
	AuditMagicLinkRejected  = "magic_link.rejected"
	AuditContextSwitched    = "session.context_switched"

	AuditStatusSuccess = "success"
	AuditStatusIgnored = "ignored"
	AuditStatusFailed  = "failed"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log records an auth event. Storage failures are logged and swallowed; an
// audit outage must not block logins. A nil service is a no-op.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, details any, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Details:    details,
		Error:      errText,
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.WarnContext(ctx, "audit log write failed", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if _, err := parseOptionalAuditTime(query.From); err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'from' datetime format", query.From, http.StatusBadRequest)
	}
	if _, err := parseOptionalAuditTime(query.To); err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'to' datetime format", query.To, http.StatusBadRequest)
	}

	return s.store.Query(ctx, query)
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}
