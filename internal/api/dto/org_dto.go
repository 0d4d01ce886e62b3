package dto

import "github.com/spec-kit/vacation-manager/internal/domain"

// TeamPayload captures team creation/update fields.
type TeamPayload struct {
	Name      string  `json:"name"`
	LeaderID  *string `json:"leader_id"`
	ProjectID *int64  `json:"project_id"`
}

// TeamResponse is the wire shape of a team.
type TeamResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	LeaderID  *string  `json:"leader_id,omitempty"`
	ProjectID *int64   `json:"project_id,omitempty"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// FromTeam maps a team record to its response shape.
func FromTeam(team *domain.Team) TeamResponse {
	return TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		LeaderID:  team.LeaderID,
		ProjectID: team.ProjectID,
		MemberIDs: team.MemberIDs,
	}
}

// ProjectPayload captures project creation/update fields.
type ProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectResponse is the wire shape of a project.
type ProjectResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FromProject maps a project record to its response shape.
func FromProject(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
	}
}
