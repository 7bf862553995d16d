package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nikah-service/internal/api/http/handlers"
	"github.com/spec-kit/nikah-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Applications   *handlers.ApplicationsHandler
	Auth           *handlers.AuthHandler
	Portal         *handlers.PortalHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	// Public: submission and status need no account.
	api.Post("/applications", cfg.Applications.Submit)
	api.Get("/applications/:id/status", cfg.Applications.Status)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	portal := api.Group("/portal", cfg.AuthMiddleware.Handle, auth.RequireApplicant())
	portal.Get("/dashboard", cfg.Portal.Dashboard)
	portal.Post("/receipt", cfg.Portal.UploadReceipt)
	portal.Post("/documents", cfg.Portal.UploadDocuments)
	portal.Get("/certificate", cfg.Portal.Certificate)
	portal.Get("/notifications", cfg.Portal.Notifications)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/applications", cfg.Admin.List)
	admin.Get("/applications/:id", cfg.Admin.Detail)
	admin.Post("/applications/:id/verify-documents", cfg.Admin.VerifyDocuments)
	admin.Post("/applications/:id/deposit", cfg.Admin.SetDeposit)
	admin.Post("/applications/:id/verify-payment", cfg.Admin.VerifyPayment)
	admin.Post("/applications/:id/appointment", cfg.Admin.ScheduleAppointment)
	admin.Post("/applications/:id/certificate", cfg.Admin.GenerateCertificate)
	admin.Post("/applications/:id/complete", cfg.Admin.ForceComplete)
	admin.Post("/applications/:id/cancel", cfg.Admin.Cancel)
	admin.Delete("/applications/:id", cfg.Admin.SoftDelete)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/notifications", cfg.Admin.Notifications)
	admin.Post("/notifications/:id/read", cfg.Admin.MarkNotificationRead)
}
