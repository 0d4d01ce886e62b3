package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vacation-manager/internal/directory"
	"github.com/spec-kit/vacation-manager/internal/domain"
	"github.com/spec-kit/vacation-manager/internal/repository"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

// OrgService manages teams, projects and directory assignments. Changing a
// leader, a member's team or a role invalidates the affected directory
// snapshots so authorization decisions never run on stale facts.
type OrgService struct {
	teams    repository.TeamRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	dir      *directory.Service
}

// OrgDependencies bundles repositories for the org service.
type OrgDependencies struct {
	TeamRepo    repository.TeamRepository
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Directory   *directory.Service
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	return &OrgService{
		teams:    deps.TeamRepo,
		projects: deps.ProjectRepo,
		users:    deps.UserRepo,
		dir:      deps.Directory,
	}
}

// TeamInput describes team creation/update payload.
type TeamInput struct {
	Name      string
	LeaderID  *string
	ProjectID *int64
}

// ProjectInput describes project creation/update payload.
type ProjectInput struct {
	Name        string
	Description string
}

// CreateTeam creates a team, optionally with a leader and project.
func (s *OrgService) CreateTeam(ctx context.Context, input TeamInput) (*domain.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("team name required", nil)
	}
	if input.LeaderID != nil {
		if err := s.checkLeaderRole(ctx, *input.LeaderID); err != nil {
			return nil, err
		}
	}

	team := &domain.Team{
		Name:      strings.TrimSpace(input.Name),
		LeaderID:  input.LeaderID,
		ProjectID: input.ProjectID,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	if team.LeaderID != nil {
		s.dir.Invalidate(ctx, *team.LeaderID)
	}
	return team, nil
}

// UpdateTeam updates name, leader and project assignment.
func (s *OrgService) UpdateTeam(ctx context.Context, id int64, input TeamInput) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", nil)
		}
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("team name required", nil)
	}
	if input.LeaderID != nil {
		if err := s.checkLeaderRole(ctx, *input.LeaderID); err != nil {
			return nil, err
		}
	}

	oldLeader := team.LeaderID
	team.Name = strings.TrimSpace(input.Name)
	team.LeaderID = input.LeaderID
	team.ProjectID = input.ProjectID
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}

	if oldLeader != nil {
		s.dir.Invalidate(ctx, *oldLeader)
	}
	if team.LeaderID != nil {
		s.dir.Invalidate(ctx, *team.LeaderID)
	}
	return team, nil
}

// GetTeam resolves a team with member ids.
func (s *OrgService) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	team, err := s.dir.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", nil)
		}
		return nil, err
	}
	return team, nil
}

// ListTeams lists all teams.
func (s *OrgService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return s.teams.List(ctx)
}

// DeleteTeam removes a team.
func (s *OrgService) DeleteTeam(ctx context.Context, id int64) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team", nil)
		}
		return err
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return err
	}
	if team.LeaderID != nil {
		s.dir.Invalidate(ctx, *team.LeaderID)
	}
	return nil
}

// AssignMember moves a user into a team (or out of any, when teamID is nil).
func (s *OrgService) AssignMember(ctx context.Context, userID string, teamID *int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	if teamID != nil {
		if _, err := s.teams.GetByID(ctx, *teamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("team", nil)
			}
			return err
		}
	}

	user.TeamID = teamID
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.dir.Invalidate(ctx, userID)
	return nil
}

// AssignRoles replaces a user's role set.
func (s *OrgService) AssignRoles(ctx context.Context, userID string, roles domain.RoleSet) error {
	if len(roles) == 0 {
		return apperrors.NewValidationError("at least one role required", nil)
	}
	for _, role := range roles {
		if !domain.KnownRole(role) {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	user.Roles = roles
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.dir.Invalidate(ctx, userID)
	return nil
}

// CreateProject creates a project.
func (s *OrgService) CreateProject(ctx context.Context, input ProjectInput) (*domain.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("project name required", nil)
	}
	project := &domain.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject updates a project.
func (s *OrgService) UpdateProject(ctx context.Context, id int64, input ProjectInput) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("project name required", nil)
	}
	project.Name = strings.TrimSpace(input.Name)
	project.Description = strings.TrimSpace(input.Description)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects lists all projects.
func (s *OrgService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// DeleteProject removes a project.
func (s *OrgService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("project", nil)
		}
		return err
	}
	return nil
}

// checkLeaderRole requires the prospective leader to hold the Team Lead or
// CEO role.
func (s *OrgService) checkLeaderRole(ctx context.Context, leaderID string) error {
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	if !leader.Roles.IsManager() {
		return apperrors.NewValidationError("team leader must hold a managerial role", map[string]any{"user_id": leaderID})
	}
	return nil
}
