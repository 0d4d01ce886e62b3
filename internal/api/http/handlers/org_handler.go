package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vacation-manager/internal/api/dto"
	"github.com/spec-kit/vacation-manager/internal/service"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

// OrgHandler exposes team, project and assignment administration.
type OrgHandler struct {
	service *service.OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService *service.OrgService) *OrgHandler {
	return &OrgHandler{service: orgService}
}

// CreateTeam POST /teams.
func (h *OrgHandler) CreateTeam(c *fiber.Ctx) error {
	var payload dto.TeamPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.CreateTeam(c.Context(), service.TeamInput{
		Name:      payload.Name,
		LeaderID:  payload.LeaderID,
		ProjectID: payload.ProjectID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTeam(team)})
}

// UpdateTeam PUT /teams/:id.
func (h *OrgHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var payload dto.TeamPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.UpdateTeam(c.Context(), id, service.TeamInput{
		Name:      payload.Name,
		LeaderID:  payload.LeaderID,
		ProjectID: payload.ProjectID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTeam(team)})
}

// GetTeam GET /teams/:id.
func (h *OrgHandler) GetTeam(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	team, err := h.service.GetTeam(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTeam(team)})
}

// ListTeams GET /teams.
func (h *OrgHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, dto.FromTeam(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteTeam DELETE /teams/:id.
func (h *OrgHandler) DeleteTeam(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTeam(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignTeam PUT /users/:id/team.
func (h *OrgHandler) AssignTeam(c *fiber.Ctx) error {
	var payload dto.AssignTeamRequest
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AssignMember(c.Context(), c.Params("id"), payload.TeamID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignRoles PUT /users/:id/roles.
func (h *OrgHandler) AssignRoles(c *fiber.Ctx) error {
	var payload dto.AssignRolesRequest
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AssignRoles(c.Context(), c.Params("id"), payload.Roles); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateProject POST /projects.
func (h *OrgHandler) CreateProject(c *fiber.Ctx) error {
	var payload dto.ProjectPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.CreateProject(c.Context(), service.ProjectInput{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromProject(project)})
}

// UpdateProject PUT /projects/:id.
func (h *OrgHandler) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var payload dto.ProjectPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.UpdateProject(c.Context(), id, service.ProjectInput{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProject(project)})
}

// ListProjects GET /projects.
func (h *OrgHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.service.ListProjects(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, dto.FromProject(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteProject DELETE /projects/:id.
func (h *OrgHandler) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProject(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
