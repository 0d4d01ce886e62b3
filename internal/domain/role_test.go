package domain

import "testing"

func TestRoleSetHas(t *testing.T) {
	t.Parallel()
	set := RoleSet{RoleTeamLead, RoleDeveloper}
	if !set.Has(RoleTeamLead) {
		t.Error("expected TEAM_LEAD in set")
	}
	if set.Has(RoleCEO) {
		t.Error("did not expect CEO in set")
	}
}

func TestIsManager(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		set  RoleSet
		want bool
	}{
		{"ceo", RoleSet{RoleCEO}, true},
		{"team lead", RoleSet{RoleTeamLead}, true},
		{"lead and developer", RoleSet{RoleDeveloper, RoleTeamLead}, true},
		{"developer", RoleSet{RoleDeveloper}, false},
		{"unassigned", RoleSet{RoleUnassigned}, false},
		{"empty", RoleSet{}, false},
	}
	for _, tc := range cases {
		if got := tc.set.IsManager(); got != tc.want {
			t.Errorf("%s: IsManager() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKnownRole(t *testing.T) {
	t.Parallel()
	if !KnownRole(RoleDeveloper) {
		t.Error("DEVELOPER should be known")
	}
	if KnownRole("INTERN") {
		t.Error("INTERN should not be known")
	}
}
