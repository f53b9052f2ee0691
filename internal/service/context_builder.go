package service

import (
	"context"
	"fmt"

	"league-platform/internal/model"
)

type GrantStore interface {
	SystemRole(ctx context.Context, userID int64) (model.SystemRole, error)
	LeagueGrants(ctx context.Context, userID int64) ([]model.LeagueGrantRow, error)
	ClubGrants(ctx context.Context, userID int64) ([]model.ClubGrantRow, error)
}

// ContextBuilder assembles the organizational claims baked into a token.
// Roles are read at issuance time only; a revoked grant stays in tokens
// already issued until they expire.
type ContextBuilder struct {
	grants GrantStore
}

func NewContextBuilder(grants GrantStore) *ContextBuilder {
	return &ContextBuilder{grants: grants}
}

// Build returns the user's grants, league grants first, with an active
// context. requested selects the first grant on exactly that scope; when it
// is nil or matches nothing the first grant is used.
func (b *ContextBuilder) Build(ctx context.Context, userID int64, requested *model.ScopeRef) (model.OrgContext, error) {
	systemRole, err := b.grants.SystemRole(ctx, userID)
	if err != nil {
		return model.OrgContext{}, fmt.Errorf("load system role: %w", err)
	}
	if systemRole == "" {
		systemRole = model.SystemRoleUser
	}

	leagueRows, err := b.grants.LeagueGrants(ctx, userID)
	if err != nil {
		return model.OrgContext{}, fmt.Errorf("load league grants: %w", err)
	}
	clubRows, err := b.grants.ClubGrants(ctx, userID)
	if err != nil {
		return model.OrgContext{}, fmt.Errorf("load club grants: %w", err)
	}

	roles := make([]model.RoleGrant, 0, len(leagueRows)+len(clubRows))
	for _, row := range leagueRows {
		roles = append(roles, model.NewLeagueGrant(row.Role, row.LeagueID, row.LeagueName))
	}
	for _, row := range clubRows {
		roles = append(roles, model.NewClubGrant(row.Role, row.ClubID, row.ClubName, row.LeagueID))
	}

	org := model.OrgContext{SystemRole: systemRole, Roles: roles}

	active := selectActive(roles, requested)
	if active != nil {
		org.ActiveContext = active
		org.OrgID = &active.ScopeID
		org.OrgType = &active.ScopeType
		org.OrgName = &active.ScopeName
	}

	return org, nil
}

func selectActive(roles []model.RoleGrant, requested *model.ScopeRef) *model.RoleGrant {
	if requested != nil {
		for i := range roles {
			if roles[i].Matches(*requested) {
				grant := roles[i]
				return &grant
			}
		}
	}
	if len(roles) == 0 {
		return nil
	}
	grant := roles[0]
	return &grant
}
