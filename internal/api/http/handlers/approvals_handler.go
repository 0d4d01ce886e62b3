package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vacation-manager/internal/api/dto"
	"github.com/spec-kit/vacation-manager/internal/auth"
	"github.com/spec-kit/vacation-manager/internal/service"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

// ApprovalsHandler exposes the approval queue for managers.
type ApprovalsHandler struct {
	service *service.RequestService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(requestService *service.RequestService) *ApprovalsHandler {
	return &ApprovalsHandler{service: requestService}
}

// Queue GET /approvals.
func (h *ApprovalsHandler) Queue(c *fiber.Ctx) error {
	viewer, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.QueueFilter{
		Status:      parseStatus(c.Query("status")),
		CreatedFrom: parseDateQuery(c.Query("from_date")),
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	queue, err := h.service.ApprovalQueue(c.Context(), *viewer, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(queue)})
}

// Approve POST /approvals/:id/approve.
func (h *ApprovalsHandler) Approve(c *fiber.Ctx) error {
	viewer, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Approve(c.Context(), *viewer, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(req)})
}

func parseStatus(val string) service.ApprovalStatus {
	switch strings.ToUpper(strings.TrimSpace(val)) {
	case string(service.ApprovalStatusApproved):
		return service.ApprovalStatusApproved
	case string(service.ApprovalStatusPending):
		return service.ApprovalStatusPending
	default:
		return service.ApprovalStatusAll
	}
}
