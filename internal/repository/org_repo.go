package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"league-platform/internal/model"
	"league-platform/internal/rbac"
)

type LeagueRepository struct {
	db DBTX
}

func NewLeagueRepository(db DBTX) *LeagueRepository {
	return &LeagueRepository{db: db}
}

// ListAccessible returns the leagues in access, ordered by name.
func (r *LeagueRepository) ListAccessible(ctx context.Context, access rbac.AccessSet) ([]model.League, error) {
	filter, args := access.WhereIn("id", 0)
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM leagues WHERE true `+filter+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]model.League, 0)
	for rows.Next() {
		var l model.League
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

type ClubRepository struct {
	db DBTX
}

func NewClubRepository(db DBTX) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) FindByID(ctx context.Context, id int64) (model.Club, error) {
	var c model.Club
	err := r.db.QueryRow(ctx, `SELECT id, league_id, name FROM clubs WHERE id = $1`, id).
		Scan(&c.ID, &c.LeagueID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Club{}, model.ErrClubNotFound
	}
	if err != nil {
		return model.Club{}, fmt.Errorf("find club: %w", err)
	}
	return c, nil
}

// LeagueIDForClub satisfies rbac.ClubLeagueLookup.
func (r *ClubRepository) LeagueIDForClub(ctx context.Context, clubID int64) (int64, error) {
	var leagueID int64
	err := r.db.QueryRow(ctx, `SELECT league_id FROM clubs WHERE id = $1`, clubID).Scan(&leagueID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrClubNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find league of club: %w", err)
	}
	return leagueID, nil
}
