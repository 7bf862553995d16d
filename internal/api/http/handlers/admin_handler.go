package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nikah-service/internal/api/dto"
	"github.com/spec-kit/nikah-service/internal/auth"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/repository"
	"github.com/spec-kit/nikah-service/internal/service"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// AdminHandler serves the registry-staff endpoints: the filtered case list and
// every lifecycle transition.
type AdminHandler struct {
	applications  *service.ApplicationService
	notifications repository.NotificationRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(applications *service.ApplicationService, notifications repository.NotificationRepository) *AdminHandler {
	return &AdminHandler{applications: applications, notifications: notifications}
}

// List GET /api/admin/applications.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	apps, err := h.applications.List(c.UserContext(), parseApplicationQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		items = append(items, dto.NewApplicationSummary(&apps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Detail GET /api/admin/applications/:id.
func (h *AdminHandler) Detail(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	view, err := h.applications.GetDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationDetail(view.Application, view.Witnesses)})
}

// VerifyDocuments POST /api/admin/applications/:id/verify-documents.
func (h *AdminHandler) VerifyDocuments(c *fiber.Ctx) error {
	id, adminID, err := parseIDWithAdmin(c)
	if err != nil {
		return err
	}
	app, err := h.applications.VerifyDocuments(c.UserContext(), id, adminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// SetDeposit POST /api/admin/applications/:id/deposit.
func (h *AdminHandler) SetDeposit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	app, err := h.applications.SetDeposit(c.UserContext(), id, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// VerifyPayment POST /api/admin/applications/:id/verify-payment.
func (h *AdminHandler) VerifyPayment(c *fiber.Ctx) error {
	id, adminID, err := parseIDWithAdmin(c)
	if err != nil {
		return err
	}
	app, err := h.applications.VerifyPayment(c.UserContext(), id, adminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// ScheduleAppointment POST /api/admin/applications/:id/appointment.
func (h *AdminHandler) ScheduleAppointment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	app, err := h.applications.ScheduleAppointment(c.UserContext(), id, service.AppointmentInput{
		Date:     req.Date,
		Time:     req.Time,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// GenerateCertificate POST /api/admin/applications/:id/certificate.
func (h *AdminHandler) GenerateCertificate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	app, err := h.applications.GenerateCertificate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// ForceComplete POST /api/admin/applications/:id/complete.
func (h *AdminHandler) ForceComplete(c *fiber.Ctx) error {
	id, adminID, err := parseIDWithAdmin(c)
	if err != nil {
		return err
	}
	app, err := h.applications.ForceComplete(c.UserContext(), id, adminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// Cancel POST /api/admin/applications/:id/cancel.
func (h *AdminHandler) Cancel(c *fiber.Ctx) error {
	id, adminID, err := parseIDWithAdmin(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Cancel(c.UserContext(), id, adminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationSummary(app)})
}

// SoftDelete DELETE /api/admin/applications/:id.
func (h *AdminHandler) SoftDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.applications.SoftDelete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUser DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.applications.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Notifications GET /api/admin/notifications.
func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	rows, err := h.notifications.ListForAdmin(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationViews(rows)})
}

// MarkNotificationRead POST /api/admin/notifications/:id/read.
func (h *AdminHandler) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), id); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseIDWithAdmin(c *fiber.Ctx) (int64, int64, error) {
	id, err := parseID(c)
	if err != nil {
		return 0, 0, err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return 0, 0, apperrors.NewUnauthorized("admin account required")
	}
	return id, principal.User.ID, nil
}

func parseApplicationQuery(c *fiber.Ctx) repository.ApplicationFilter {
	filter := repository.ApplicationFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ApplicationStatus(strings.TrimSpace(part)))
		}
	}
	if paymentStr := c.Query("payment_status"); paymentStr != "" {
		for _, part := range strings.Split(paymentStr, ",") {
			filter.PaymentStatuses = append(filter.PaymentStatuses, domain.PaymentStatus(strings.TrimSpace(part)))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.IncludeDeleted = c.Query("include_deleted") == "true"

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
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
