package domain

// Actor is the directory's view of a user: identity, roles and team facts.
// LedTeamID is derived from the team's leader relation by the directory and is
// never mutated independently.
type Actor struct {
	ID        string
	Name      string
	Email     string
	Roles     RoleSet
	TeamID    *int64
	LedTeamID *int64
}

// IsManager reports whether the actor holds CEO or Team Lead.
func (a Actor) IsManager() bool {
	return a.Roles.IsManager()
}

// Leads reports whether the actor leads the given team.
func (a Actor) Leads(teamID int64) bool {
	return a.LedTeamID != nil && *a.LedTeamID == teamID
}
