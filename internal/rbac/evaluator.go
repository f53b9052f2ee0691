// Package rbac answers capability questions from verified token claims. The
// evaluator never touches the database except in CanAccessLeagueOfClub, which
// needs the club's league and takes a lookup for it.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"league-platform/internal/model"
	"league-platform/internal/token"
)

// ClubLeagueLookup resolves the league owning a club.
type ClubLeagueLookup interface {
	LeagueIDForClub(ctx context.Context, clubID int64) (int64, error)
}

type Evaluator struct {
	systemRole    model.SystemRole
	roles         []model.RoleGrant
	activeContext *model.RoleGrant
}

func New(claims token.Claims) *Evaluator {
	return &Evaluator{
		systemRole:    claims.SystemRole,
		roles:         claims.Roles,
		activeContext: claims.ActiveContext,
	}
}

func (e *Evaluator) SystemRole() model.SystemRole {
	if e.systemRole == "" {
		return model.SystemRoleUser
	}
	return e.systemRole
}

func (e *Evaluator) Roles() []model.RoleGrant {
	return append([]model.RoleGrant(nil), e.roles...)
}

func (e *Evaluator) ActiveContext() *model.RoleGrant {
	return e.activeContext
}

func (e *Evaluator) IsSuperAdmin() bool {
	return e.systemRole == model.SystemRoleSuperAdmin
}

// HasRole reports whether the token holds role in any scope.
func (e *Evaluator) HasRole(role model.Role) bool {
	if e.IsSuperAdmin() {
		return true
	}
	for _, grant := range e.roles {
		if grant.Role == role {
			return true
		}
	}
	return false
}

// HasScopedRole reports whether the token holds role on exactly scope.
func (e *Evaluator) HasScopedRole(role model.Role, scope model.ScopeRef) bool {
	if e.IsSuperAdmin() {
		return true
	}
	for _, grant := range e.roles {
		if grant.Role == role && grant.Matches(scope) {
			return true
		}
	}
	return false
}

// CanAccessLeague grants visibility to league admins of the league and to any
// holder of a club role inside it. Visibility is not edit rights.
func (e *Evaluator) CanAccessLeague(leagueID int64) bool {
	if e.IsSuperAdmin() {
		return true
	}
	if e.HasScopedRole(model.RoleLeagueAdmin, model.LeagueScope(leagueID)) {
		return true
	}
	for _, grant := range e.roles {
		if grant.ScopeType != model.ScopeClub {
			continue
		}
		if parent, ok := grant.League(); ok && parent == leagueID {
			return true
		}
	}
	return false
}

// CanAccessClub checks club-scoped grants only. League admin inheritance over
// the club needs CanAccessLeagueOfClub.
func (e *Evaluator) CanAccessClub(clubID int64) bool {
	if e.IsSuperAdmin() {
		return true
	}
	for _, grant := range e.roles {
		if grant.Matches(model.ClubScope(clubID)) {
			return true
		}
	}
	return false
}

// CanAccessLeagueOfClub looks up the club's league and applies CanAccessLeague.
// An unknown club is a denial, not an error.
func (e *Evaluator) CanAccessLeagueOfClub(ctx context.Context, lookup ClubLeagueLookup, clubID int64) (bool, error) {
	if e.IsSuperAdmin() {
		return true, nil
	}
	leagueID, err := lookup.LeagueIDForClub(ctx, clubID)
	if errors.Is(err, model.ErrClubNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolve league of club %d: %w", clubID, err)
	}
	return e.CanAccessLeague(leagueID), nil
}

// Can reports whether any role allowed to perform action is held, in any scope.
func (e *Evaluator) Can(action string) bool {
	return e.can(action, nil)
}

// CanIn reports whether an allowed role is held on exactly scope.
func (e *Evaluator) CanIn(action string, scope model.ScopeRef) bool {
	return e.can(action, &scope)
}

func (e *Evaluator) can(action string, scope *model.ScopeRef) bool {
	if e.IsSuperAdmin() {
		return true
	}

	allowed, ok := permissions[action]
	if !ok {
		slog.Warn("authorization check for unknown action", "action", action)
		return false
	}

	for _, role := range allowed {
		if scope == nil && e.HasRole(role) {
			return true
		}
		if scope != nil && e.HasScopedRole(role, *scope) {
			return true
		}
	}
	return false
}
