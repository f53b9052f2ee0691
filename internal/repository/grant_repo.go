package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"league-platform/internal/model"
)

type GrantRepository struct {
	db DBTX
}

func NewGrantRepository(db DBTX) *GrantRepository {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) SystemRole(ctx context.Context, userID int64) (model.SystemRole, error) {
	var role model.SystemRole
	err := r.db.QueryRow(ctx, `SELECT system_role FROM users WHERE id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load system role: %w", err)
	}
	return role, nil
}

// LeagueGrants returns the user's active league roles in grant order.
func (r *GrantRepository) LeagueGrants(ctx context.Context, userID int64) ([]model.LeagueGrantRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT lr.role, l.id, l.name
		 FROM league_roles lr
		 JOIN leagues l ON l.id = lr.league_id
		 WHERE lr.user_id = $1 AND lr.is_active
		 ORDER BY lr.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list league grants: %w", err)
	}
	defer rows.Close()

	grants := make([]model.LeagueGrantRow, 0)
	for rows.Next() {
		var g model.LeagueGrantRow
		if err := rows.Scan(&g.Role, &g.LeagueID, &g.LeagueName); err != nil {
			return nil, fmt.Errorf("scan league grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// ClubGrants returns the user's active club roles with each club's league.
func (r *GrantRepository) ClubGrants(ctx context.Context, userID int64) ([]model.ClubGrantRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT cr.role, c.id, c.name, c.league_id
		 FROM club_roles cr
		 JOIN clubs c ON c.id = cr.club_id
		 WHERE cr.user_id = $1 AND cr.is_active
		 ORDER BY cr.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list club grants: %w", err)
	}
	defer rows.Close()

	grants := make([]model.ClubGrantRow, 0)
	for rows.Next() {
		var g model.ClubGrantRow
		if err := rows.Scan(&g.Role, &g.ClubID, &g.ClubName, &g.LeagueID); err != nil {
			return nil, fmt.Errorf("scan club grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
