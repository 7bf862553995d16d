package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nikah-service/internal/api/dto"
	"github.com/spec-kit/nikah-service/internal/auth"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/repository"
	"github.com/spec-kit/nikah-service/internal/service"
	"github.com/spec-kit/nikah-service/internal/storage"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// PortalHandler serves the applicant self-service endpoints. Every route is
// scoped to the caller's own application.
type PortalHandler struct {
	applications  *service.ApplicationService
	notifications repository.NotificationRepository
	store         storage.Store
}

// NewPortalHandler constructs handler.
func NewPortalHandler(applications *service.ApplicationService, notifications repository.NotificationRepository, store storage.Store) *PortalHandler {
	return &PortalHandler{applications: applications, notifications: notifications, store: store}
}

// Dashboard GET /api/portal/dashboard.
func (h *PortalHandler) Dashboard(c *fiber.Ctx) error {
	principal, err := requireApplicant(c)
	if err != nil {
		return err
	}
	view, err := h.applications.GetDashboard(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicationDetail(view.Application, view.Witnesses)})
}

// UploadReceipt POST /api/portal/receipt.
func (h *PortalHandler) UploadReceipt(c *fiber.Ctx) error {
	principal, err := requireApplicant(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return apperrors.NewValidationError("receipt file required", nil)
	}

	path, err := h.saveUpload(fileHeader)
	if err != nil {
		return err
	}

	view, err := h.applications.GetDashboard(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	app, err := h.applications.AttachReceipt(c.UserContext(), view.Application.ID, principal.User.ID, path)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"payment_status": app.PaymentStatus,
		"receipt_path":   path,
	}})
}

// UploadDocuments POST /api/portal/documents. Each multipart file field names
// the document slot it fills (groom_id, bride_id, groom_photo, ...).
func (h *PortalHandler) UploadDocuments(c *fiber.Ctx) error {
	principal, err := requireApplicant(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File) == 0 {
		return apperrors.NewValidationError("at least one document file required", nil)
	}

	view, err := h.applications.GetDashboard(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}

	saved := fiber.Map{}
	for slot, files := range form.File {
		if !service.DocumentSlotValid(slot) {
			return apperrors.NewValidationError("unknown document slot",
				map[string]any{"slot": slot})
		}
		if len(files) == 0 {
			continue
		}
		path, err := h.saveUpload(files[0])
		if err != nil {
			return err
		}
		if _, err := h.applications.AttachDocument(c.UserContext(), view.Application.ID, principal.User.ID, slot, path); err != nil {
			return err
		}
		saved[slot] = path
	}
	return c.JSON(fiber.Map{"data": saved})
}

// Certificate GET /api/portal/certificate.
func (h *PortalHandler) Certificate(c *fiber.Ctx) error {
	principal, err := requireApplicant(c)
	if err != nil {
		return err
	}
	view, err := h.applications.GetDashboard(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	app := view.Application
	if app.Status != domain.StatusCompleted || app.CertificatePath == nil {
		return apperrors.NewPreconditionFailed("certificate is not available yet")
	}
	return c.Download(*app.CertificatePath)
}

// Notifications GET /api/portal/notifications.
func (h *PortalHandler) Notifications(c *fiber.Ctx) error {
	principal, err := requireApplicant(c)
	if err != nil {
		return err
	}
	view, err := h.applications.GetDashboard(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	rows, err := h.notifications.ListByApplication(c.UserContext(), view.Application.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationViews(rows)})
}

func (h *PortalHandler) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	defer file.Close()
	return h.store.Save(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
}

func requireApplicant(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("applicant account required")
	}
	return principal, nil
}
