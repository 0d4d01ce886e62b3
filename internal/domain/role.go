package domain

// Role enumerates organizational roles.
type Role string

const (
	RoleCEO        Role = "CEO"
	RoleTeamLead   Role = "TEAM_LEAD"
	RoleDeveloper  Role = "DEVELOPER"
	RoleUnassigned Role = "UNASSIGNED"
)

// KnownRole reports whether the value is one of the defined roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleCEO, RoleTeamLead, RoleDeveloper, RoleUnassigned:
		return true
	}
	return false
}

// RoleSet is the collection of roles held by an actor.
type RoleSet []Role

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// IsManager reports whether the set contains a managerial role (CEO or Team Lead).
func (s RoleSet) IsManager() bool {
	return s.Has(RoleCEO) || s.Has(RoleTeamLead)
}
