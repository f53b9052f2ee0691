package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"league-platform/internal/model"
)

type MagicLinkRepository struct {
	db DBTX
}

func NewMagicLinkRepository(db DBTX) *MagicLinkRepository {
	return &MagicLinkRepository{db: db}
}

// Create stores link and returns it with its id and creation time. A token
// that already exists yields model.ErrMagicLinkCollision.
func (r *MagicLinkRepository) Create(ctx context.Context, link model.MagicLink) (model.MagicLink, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO magic_link_tokens (user_id, email, token, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		link.UserID, link.Email, link.Token, link.ExpiresAt).Scan(&link.ID, &link.CreatedAt)
	if isUniqueViolation(err) {
		return model.MagicLink{}, model.ErrMagicLinkCollision
	}
	if err != nil {
		return model.MagicLink{}, fmt.Errorf("store magic link: %w", err)
	}
	return link, nil
}

func (r *MagicLinkRepository) FindByToken(ctx context.Context, token string) (model.MagicLink, error) {
	var link model.MagicLink
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, email, token, expires_at, used_at, created_at
		 FROM magic_link_tokens WHERE token = $1`, token).
		Scan(&link.ID, &link.UserID, &link.Email, &link.Token, &link.ExpiresAt, &link.UsedAt, &link.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.MagicLink{}, model.ErrMagicLinkNotFound
	}
	if err != nil {
		return model.MagicLink{}, fmt.Errorf("find magic link: %w", err)
	}
	return link, nil
}

// MarkUsed consumes the token. It reports false when another redemption got
// there first; the row is only updated while used_at is still NULL.
func (r *MagicLinkRepository) MarkUsed(ctx context.Context, token string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE magic_link_tokens SET used_at = $2 WHERE token = $1 AND used_at IS NULL`, token, at)
	if err != nil {
		return false, fmt.Errorf("mark magic link used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *MagicLinkRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM magic_link_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	return tag.RowsAffected(), nil
}
