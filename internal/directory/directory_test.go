package directory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

type fakeUserRepo struct {
	users map[string]domain.User
}

func (r *fakeUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *fakeUserRepo) Update(context.Context, *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			out := user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListIDsByTeam(_ context.Context, teamID int64) ([]string, error) {
	var ids []string
	for id, user := range r.users {
		if user.TeamID != nil && *user.TeamID == teamID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeTeamRepo struct {
	teams map[int64]domain.Team
}

func (r *fakeTeamRepo) Create(context.Context, *domain.Team) error { return nil }
func (r *fakeTeamRepo) Update(context.Context, *domain.Team) error { return nil }
func (r *fakeTeamRepo) Delete(context.Context, int64) error        { return nil }
func (r *fakeTeamRepo) List(context.Context) ([]domain.Team, error) {
	return nil, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int64) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := team
	return &out, nil
}

func (r *fakeTeamRepo) GetByLeader(_ context.Context, leaderID string) (*domain.Team, error) {
	for _, team := range r.teams {
		if team.LeaderID != nil && *team.LeaderID == leaderID {
			out := team
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func teamRef(id int64) *int64 { return &id }

func strRef(s string) *string { return &s }

func newTestDirectory() *Service {
	users := &fakeUserRepo{users: map[string]domain.User{
		"lead-1": {
			ID:        "lead-1",
			FirstName: "Ada",
			LastName:  "L",
			Email:     "ada@example.com",
			Roles:     domain.RoleSet{domain.RoleTeamLead},
			TeamID:    teamRef(2),
		},
		"dev-1": {
			ID:     "dev-1",
			Roles:  domain.RoleSet{domain.RoleDeveloper},
			TeamID: teamRef(1),
		},
	}}
	teams := &fakeTeamRepo{teams: map[int64]domain.Team{
		1: {ID: 1, Name: "backend", LeaderID: strRef("lead-1")},
		2: {ID: 2, Name: "frontend"},
	}}
	return NewService(users, teams, nil, time.Minute, zap.NewNop())
}

func TestGetActorDerivesLedTeam(t *testing.T) {
	t.Parallel()
	dir := newTestDirectory()

	actor, err := dir.GetActor(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if actor.LedTeamID == nil || *actor.LedTeamID != 1 {
		t.Errorf("led team = %v, want 1", actor.LedTeamID)
	}
	if actor.TeamID == nil || *actor.TeamID != 2 {
		t.Errorf("own team = %v, want 2", actor.TeamID)
	}
	if actor.Name != "Ada L" {
		t.Errorf("name = %q, want Ada L", actor.Name)
	}
}

func TestGetActorNonLeaderHasNoLedTeam(t *testing.T) {
	t.Parallel()
	dir := newTestDirectory()

	actor, err := dir.GetActor(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if actor.LedTeamID != nil {
		t.Errorf("led team = %v, want nil", actor.LedTeamID)
	}
}

func TestGetActorUnknownUser(t *testing.T) {
	t.Parallel()
	dir := newTestDirectory()

	if _, err := dir.GetActor(context.Background(), "ghost"); err == nil {
		t.Error("unknown user should error")
	}
}

func TestGetTeamIncludesMembers(t *testing.T) {
	t.Parallel()
	dir := newTestDirectory()

	team, err := dir.GetTeam(context.Background(), 1)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if len(team.MemberIDs) != 1 || team.MemberIDs[0] != "dev-1" {
		t.Errorf("members = %v, want [dev-1]", team.MemberIDs)
	}
}
