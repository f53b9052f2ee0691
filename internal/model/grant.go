package model

// SystemRole is the global override carried by every token.
type SystemRole string

const (
	SystemRoleUser       SystemRole = "user"
	SystemRoleSuperAdmin SystemRole = "super_admin"
)

// Role is an organizational role held within a league or club scope.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleLeagueAdmin   Role = "league_admin"
	RoleClubAdmin     Role = "club_admin"
	RoleCoach         Role = "coach"
	RoleTeamManager   Role = "team_manager"
	RoleParent        Role = "parent"
	RoleAdministrator Role = "administrator"
)

// ScopeType identifies the level of the organizational tree a grant applies to.
type ScopeType string

const (
	ScopeLeague ScopeType = "league"
	ScopeClub   ScopeType = "club"
)

func (t ScopeType) Valid() bool {
	return t == ScopeLeague || t == ScopeClub
}

// ScopeRef points at one league or club.
type ScopeRef struct {
	ID   int64     `json:"scope_id"`
	Type ScopeType `json:"scope_type"`
}

func LeagueScope(id int64) ScopeRef { return ScopeRef{ID: id, Type: ScopeLeague} }

func ClubScope(id int64) ScopeRef { return ScopeRef{ID: id, Type: ScopeClub} }

// RoleGrant is one row of access baked into a token. Use NewLeagueGrant or
// NewClubGrant; a club grant always carries the league that owns the club.
type RoleGrant struct {
	Role      Role      `json:"role"`
	ScopeType ScopeType `json:"scope_type"`
	ScopeID   int64     `json:"scope_id"`
	ScopeName string    `json:"scope_name"`
	LeagueID  *int64    `json:"league_id,omitempty"`
}

func NewLeagueGrant(role Role, leagueID int64, leagueName string) RoleGrant {
	return RoleGrant{
		Role:      role,
		ScopeType: ScopeLeague,
		ScopeID:   leagueID,
		ScopeName: leagueName,
	}
}

func NewClubGrant(role Role, clubID int64, clubName string, leagueID int64) RoleGrant {
	return RoleGrant{
		Role:      role,
		ScopeType: ScopeClub,
		ScopeID:   clubID,
		ScopeName: clubName,
		LeagueID:  &leagueID,
	}
}

// Scope returns the (id, type) pair the grant applies to.
func (g RoleGrant) Scope() ScopeRef {
	return ScopeRef{ID: g.ScopeID, Type: g.ScopeType}
}

// League reports the league that owns the grant's scope: the scope itself for
// league grants, the parent league for club grants.
func (g RoleGrant) League() (int64, bool) {
	switch g.ScopeType {
	case ScopeLeague:
		return g.ScopeID, true
	case ScopeClub:
		if g.LeagueID != nil {
			return *g.LeagueID, true
		}
	}
	return 0, false
}

// Matches reports whether the grant applies to exactly the given scope.
func (g RoleGrant) Matches(scope ScopeRef) bool {
	return g.ScopeID == scope.ID && g.ScopeType == scope.Type
}

// OrgContext is the organizational part of a token payload.
type OrgContext struct {
	SystemRole    SystemRole  `json:"system_role"`
	OrgID         *int64      `json:"org_id"`
	OrgType       *ScopeType  `json:"org_type"`
	OrgName       *string     `json:"org_name"`
	Roles         []RoleGrant `json:"roles"`
	ActiveContext *RoleGrant  `json:"active_context"`
}
