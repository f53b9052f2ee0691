package rbac

import (
	"fmt"
	"strings"

	"league-platform/internal/model"
)

// AccessSet is the set of scope ids a token can see. All is set only for
// super admins.
type AccessSet struct {
	All bool
	IDs []int64
}

func (s AccessSet) Contains(id int64) bool {
	if s.All {
		return true
	}
	for _, candidate := range s.IDs {
		if candidate == id {
			return true
		}
	}
	return false
}

// WhereIn builds a fragment restricting column to the set. Placeholders start
// at $argOffset+1 so the fragment can be appended to a query that already
// binds argOffset values. An empty set yields an always-false fragment, never
// an empty one.
func (s AccessSet) WhereIn(column string, argOffset int) (string, []any) {
	if s.All {
		return "", nil
	}
	if len(s.IDs) == 0 {
		return "AND 1 = 0", nil
	}

	placeholders := make([]string, len(s.IDs))
	args := make([]any, len(s.IDs))
	for i, id := range s.IDs {
		placeholders[i] = fmt.Sprintf("$%d", argOffset+i+1)
		args[i] = id
	}
	return fmt.Sprintf("AND %s IN (%s)", column, strings.Join(placeholders, ", ")), args
}

// AccessibleLeagueIDs returns the leagues CanAccessLeague admits: league_admin
// grants plus the parent leagues of club grants. Other league-scoped roles
// are not listed.
func (e *Evaluator) AccessibleLeagueIDs() AccessSet {
	if e.IsSuperAdmin() {
		return AccessSet{All: true}
	}
	ids := newIDSet()
	for _, grant := range e.roles {
		switch grant.ScopeType {
		case model.ScopeLeague:
			if grant.Role == model.RoleLeagueAdmin {
				ids.add(grant.ScopeID)
			}
		case model.ScopeClub:
			if leagueID, ok := grant.League(); ok {
				ids.add(leagueID)
			}
		}
	}
	return AccessSet{IDs: ids.list}
}

// AccessibleClubIDs returns clubs granted directly.
func (e *Evaluator) AccessibleClubIDs() AccessSet {
	if e.IsSuperAdmin() {
		return AccessSet{All: true}
	}
	ids := newIDSet()
	for _, grant := range e.roles {
		if grant.ScopeType == model.ScopeClub {
			ids.add(grant.ScopeID)
		}
	}
	return AccessSet{IDs: ids.list}
}

type idSet struct {
	seen map[int64]struct{}
	list []int64
}

func newIDSet() *idSet {
	return &idSet{seen: map[int64]struct{}{}, list: []int64{}}
}

func (s *idSet) add(id int64) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.list = append(s.list, id)
}
