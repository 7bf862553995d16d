package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nikah-service/internal/api/dto"
	"github.com/spec-kit/nikah-service/internal/service"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// ApplicationsHandler serves the public submission and status endpoints.
// Neither requires authentication; the portal password arrives by email.
type ApplicationsHandler struct {
	submissions  *service.SubmissionService
	applications *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(submissions *service.SubmissionService, applications *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{submissions: submissions, applications: applications}
}

// Submit POST /api/applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.submissions.Submit(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionResponse{
		ID:                result.ApplicationID,
		ApplicationNumber: result.ApplicationNumber,
	}})
}

// Status GET /api/applications/:id/status.
func (h *ApplicationsHandler) Status(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	view, err := h.applications.GetStatus(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
