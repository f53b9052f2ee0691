package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"league-platform/internal/metrics"
	"league-platform/internal/model"
	"league-platform/internal/token"
	"league-platform/pkg/apierror"
)

const (
	MagicLinkTTL   = 15 * time.Minute
	magicLinkBytes = 32
)

var (
	ErrMagicLinkNotFound = apierror.New("MAGIC_LINK_INVALID", "Invalid or expired magic link", "", http.StatusBadRequest)
	ErrMagicLinkUsed     = apierror.New("MAGIC_LINK_USED", "This magic link has already been used", "", http.StatusBadRequest)
	ErrMagicLinkExpired  = apierror.New("MAGIC_LINK_EXPIRED", "This magic link has expired", "", http.StatusGone)
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type MagicLinkStore interface {
	Create(ctx context.Context, link model.MagicLink) (model.MagicLink, error)
	FindByToken(ctx context.Context, token string) (model.MagicLink, error)
	// MarkUsed must set used_at only while it is still NULL and report
	// whether this call did so.
	MarkUsed(ctx context.Context, token string, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type MagicLinkService struct {
	users   UserStore
	links   MagicLinkStore
	mailer  Mailer
	codec   *token.Codec
	audit   *AuditService
	baseURL string
	now     func() time.Time
}

func NewMagicLinkService(users UserStore, links MagicLinkStore, mailer Mailer, codec *token.Codec, audit *AuditService, baseURL string) *MagicLinkService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &MagicLinkService{
		users:   users,
		links:   links,
		mailer:  mailer,
		codec:   codec,
		audit:   audit,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *MagicLinkService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue creates and mails a login link for email. Unknown addresses get the
// same nil result as known ones and nothing is stored or sent.
func (s *MagicLinkService) Issue(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	actor := actorFromContext(ctx)
	actor.Email = email

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		slog.InfoContext(ctx, "magic link requested for unknown email", "email", email)
		metrics.MagicLink("unknown_email")
		s.audit.Log(ctx, AuditMagicLinkRequested, actor, AuditStatusIgnored, "", nil, "unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}

	link, err := s.create(ctx, user)
	if err != nil {
		return err
	}

	if err := s.mailer.SendMagicLink(ctx, user.Email, s.linkURL(link.Token), link.ExpiresAt); err != nil {
		slog.WarnContext(ctx, "magic link delivery failed", "user_id", user.ID, "error", err)
		metrics.MagicLink("delivery_failed")
	}

	actor.UserID = user.SubjectID()
	metrics.MagicLink("requested")
	s.audit.Log(ctx, AuditMagicLinkRequested, actor, AuditStatusSuccess, "", map[string]any{"expires_at": link.ExpiresAt.UTC().Format(time.RFC3339)}, "")
	return nil
}

// create stores a fresh link, retrying once if the random token collides.
func (s *MagicLinkService) create(ctx context.Context, user model.User) (model.MagicLink, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := randomToken()
		if err != nil {
			return model.MagicLink{}, err
		}

		link, err := s.links.Create(ctx, model.MagicLink{
			UserID:    user.ID,
			Email:     user.Email,
			Token:     raw,
			ExpiresAt: s.now().Add(MagicLinkTTL),
		})
		if errors.Is(err, model.ErrMagicLinkCollision) {
			slog.WarnContext(ctx, "magic link token collision, retrying", "user_id", user.ID)
			lastErr = err
			continue
		}
		if err != nil {
			return model.MagicLink{}, fmt.Errorf("create magic link: %w", err)
		}
		return link, nil
	}
	return model.MagicLink{}, fmt.Errorf("create magic link: %w", lastErr)
}

// Verify redeems a link exactly once and returns a bare-identity token.
func (s *MagicLinkService) Verify(ctx context.Context, raw string) (model.LoginResult, error) {
	raw = strings.TrimSpace(raw)
	actor := actorFromContext(ctx)

	link, err := s.links.FindByToken(ctx, raw)
	if errors.Is(err, model.ErrMagicLinkNotFound) {
		return model.LoginResult{}, s.reject(ctx, actor, ErrMagicLinkNotFound)
	}
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("find magic link: %w", err)
	}
	actor.UserID = strconv.FormatInt(link.UserID, 10)
	actor.Email = link.Email

	now := s.now()
	if link.IsUsed() {
		return model.LoginResult{}, s.reject(ctx, actor, ErrMagicLinkUsed)
	}
	if link.IsExpiredAt(now) {
		return model.LoginResult{}, s.reject(ctx, actor, ErrMagicLinkExpired)
	}

	won, err := s.links.MarkUsed(ctx, raw, now)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("consume magic link: %w", err)
	}
	if !won {
		return model.LoginResult{}, s.reject(ctx, actor, ErrMagicLinkUsed)
	}

	user, err := s.users.FindByID(ctx, link.UserID)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("resolve magic link user: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return model.LoginResult{}, fmt.Errorf("update last login: %w", err)
	}

	signed, err := s.codec.EncodeIdentity(user.SubjectID(), user.Email, user.DisplayName, nil)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("issue login token: %w", err)
	}

	metrics.MagicLink("redeemed")
	metrics.TokenIssued(string(s.codec.Algorithm()), "identity")
	s.audit.Log(ctx, AuditMagicLinkRedeemed, actor, AuditStatusSuccess, "", nil, "")
	slog.InfoContext(ctx, "magic link redeemed", "user_id", user.ID)

	return model.LoginResult{Token: signed, User: user.AuthUser()}, nil
}

// PurgeExpired deletes links that expired before now.
func (s *MagicLinkService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.links.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired magic links: %w", err)
	}
	return n, nil
}

// StartCleanupTicker purges expired links every interval until ctx is done.
func (s *MagicLinkService) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.WarnContext(ctx, "magic link cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "expired magic links purged", "count", n)
			}
		}
	}
}

func (s *MagicLinkService) reject(ctx context.Context, actor model.AuditActor, reason *apierror.APIError) error {
	metrics.MagicLink("rejected_" + strings.ToLower(strings.TrimPrefix(reason.Code, "MAGIC_LINK_")))
	s.audit.Log(ctx, AuditMagicLinkRejected, actor, AuditStatusFailed, "", nil, reason.Message)
	return reason
}

func (s *MagicLinkService) linkURL(raw string) string {
	base := strings.TrimSpace(s.baseURL)
	if base == "" {
		return raw
	}

	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(raw)
	}
	q := u.Query()
	q.Set("token", raw)
	u.RawQuery = q.Encode()
	return u.String()
}

func randomToken() (string, error) {
	buf := make([]byte, magicLinkBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate magic link token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
