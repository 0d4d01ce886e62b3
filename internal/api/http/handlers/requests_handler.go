package handlers

import (
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vacation-manager/internal/api/dto"
	"github.com/spec-kit/vacation-manager/internal/auth"
	"github.com/spec-kit/vacation-manager/internal/domain"
	"github.com/spec-kit/vacation-manager/internal/service"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

// RequestsHandler manages an actor's own vacation requests.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := service.ListFilter{
		CreatedFrom: parseDateQuery(c.Query("from_date")),
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	requests, err := h.service.List(c.Context(), *actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Context(), *actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(req)})
}

// Create POST /requests. Accepts JSON or multipart (sick note upload).
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, cleanup, err := parseRequestInput(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := h.service.Create(c.Context(), *actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromRequest(req)})
}

// Edit PUT /requests/:id.
func (h *RequestsHandler) Edit(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	input, cleanup, err := parseRequestInput(c)
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := h.service.Edit(c.Context(), *actor, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(req)})
}

// Delete DELETE /requests/:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), *actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadSickNote GET /requests/:id/attachment.
func (h *RequestsHandler) DownloadSickNote(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	reader, fileName, err := h.service.OpenSickNote(c.Context(), *actor, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.SendStream(reader)
}

func parseRequestInput(c *fiber.Ctx) (service.RequestInput, func(), error) {
	var payload dto.CreateRequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return service.RequestInput{}, noCleanup, apperrors.NewValidationError("invalid payload", nil)
	}
	if payload.StartDate == "" || payload.EndDate == "" || payload.Type == "" {
		return service.RequestInput{}, noCleanup, apperrors.NewValidationError("start_date, end_date, type required", nil)
	}
	start, err := time.Parse("2006-01-02", payload.StartDate)
	if err != nil {
		return service.RequestInput{}, noCleanup, apperrors.NewValidationError("invalid start_date", nil)
	}
	end, err := time.Parse("2006-01-02", payload.EndDate)
	if err != nil {
		return service.RequestInput{}, noCleanup, apperrors.NewValidationError("invalid end_date", nil)
	}

	input := service.RequestInput{
		StartDate: start,
		EndDate:   end,
		Type:      payload.Type,
		HalfDay:   payload.HalfDay,
	}

	cleanup := noCleanup
	if payload.Type == domain.RequestTypeSick {
		if header, err := c.FormFile("sick_note"); err == nil {
			file, err := openUpload(header)
			if err != nil {
				return service.RequestInput{}, noCleanup, err
			}
			input.SickNote = &service.SickNoteInput{FileName: header.Filename, Content: file}
			cleanup = func() { file.Close() }
		}
	}
	return input, cleanup, nil
}

func openUpload(header *multipart.FileHeader) (multipart.File, error) {
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unable to read uploaded file", nil)
	}
	return file, nil
}

func noCleanup() {}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func parseDateQuery(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func requestResponses(requests []domain.VacationRequest) []dto.RequestResponse {
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.FromRequest(&requests[i]))
	}
	return items
}
