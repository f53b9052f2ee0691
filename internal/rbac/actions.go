package rbac

import "league-platform/internal/model"

const (
	ActionCreateLeague    = "create_league"
	ActionEditLeague      = "edit_league"
	ActionDeleteLeague    = "delete_league"
	ActionCreateClub      = "create_club"
	ActionEditClub        = "edit_club"
	ActionDeleteClub      = "delete_club"
	ActionCreateTeam      = "create_team"
	ActionEditTeam        = "edit_team"
	ActionDeleteTeam      = "delete_team"
	ActionManageRoster    = "manage_roster"
	ActionInviteAdmin     = "invite_admin"
	ActionInviteCoach     = "invite_coach"
	ActionManageVenues    = "manage_venues"
	ActionManageEvents    = "manage_events"
	ActionManagePrograms  = "manage_programs"
	ActionRegisterAthlete = "register_athlete"
	ActionViewAthletes    = "view_athletes"
	ActionViewAudit       = "view_audit"
)

// permissions maps an action to the roles allowed to perform it.
var permissions = map[string][]model.Role{
	ActionCreateLeague: {model.RoleSuperAdmin},
	ActionEditLeague:   {model.RoleSuperAdmin, model.RoleLeagueAdmin},
	ActionDeleteLeague: {model.RoleSuperAdmin},

	ActionCreateClub: {model.RoleSuperAdmin, model.RoleLeagueAdmin},
	ActionEditClub:   {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin},
	ActionDeleteClub: {model.RoleSuperAdmin, model.RoleLeagueAdmin},

	ActionCreateTeam:   {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin},
	ActionEditTeam:     {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleCoach, model.RoleTeamManager},
	ActionDeleteTeam:   {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin},
	ActionManageRoster: {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleCoach, model.RoleTeamManager},

	ActionInviteAdmin: {model.RoleSuperAdmin, model.RoleLeagueAdmin},
	ActionInviteCoach: {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin},

	ActionManageVenues:   {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleAdministrator},
	ActionManageEvents:   {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleCoach, model.RoleTeamManager, model.RoleAdministrator},
	ActionManagePrograms: {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleAdministrator},

	ActionRegisterAthlete: {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleParent},
	ActionViewAthletes:    {model.RoleSuperAdmin, model.RoleLeagueAdmin, model.RoleClubAdmin, model.RoleCoach, model.RoleTeamManager, model.RoleParent},

	ActionViewAudit: {model.RoleSuperAdmin},
}

// Actions lists every known action name.
func Actions() []string {
	out := make([]string, 0, len(permissions))
	for action := range permissions {
		out = append(out, action)
	}
	return out
}

// RolesFor returns the roles allowed to perform action.
func RolesFor(action string) ([]model.Role, bool) {
	roles, ok := permissions[action]
	if !ok {
		return nil, false
	}
	return append([]model.Role(nil), roles...), true
}
