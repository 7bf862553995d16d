package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/events"
	"github.com/spec-kit/nikah-service/internal/mailer"
	"github.com/spec-kit/nikah-service/internal/repository"
)

// NotificationService turns committed lifecycle events into in-app
// notification rows and best-effort emails. Every handler is fault-tolerant:
// nothing here can fail the transition that emitted the event, and every
// email attempt is recorded sent or failed in the audit log.
type NotificationService struct {
	notifications repository.NotificationRepository
	emailLogs     repository.EmailLogRepository
	applications  repository.ApplicationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	mail          mailer.Mailer
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NotificationDependencies bundles requirements for the dispatcher.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	EmailLogRepo     repository.EmailLogRepository
	ApplicationRepo  repository.ApplicationRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Mailer           mailer.Mailer
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		emailLogs:     deps.EmailLogRepo,
		applications:  deps.ApplicationRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		mail:          deps.Mailer,
		logger:        deps.Logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleSubmitted)
	n.dispatcher.Subscribe(events.EventDocumentsVerified, n.handleDocumentsVerified)
	n.dispatcher.Subscribe(events.EventDepositSet, n.handleDepositSet)
	n.dispatcher.Subscribe(events.EventReceiptUploaded, n.handleReceiptUploaded)
	n.dispatcher.Subscribe(events.EventPaymentVerified, n.handlePaymentVerified)
	n.dispatcher.Subscribe(events.EventAppointmentScheduled, n.handleAppointmentScheduled)
	n.dispatcher.Subscribe(events.EventCertificateGenerated, n.handleCertificateGenerated)
	n.dispatcher.Subscribe(events.EventApplicationCancelled, n.handleCancelled)
	n.dispatcher.Subscribe(events.EventApplicationCompleted, n.handleCompleted)
}

func (n *NotificationService) handleSubmitted(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SubmittedPayload)

	n.record(ctx, event, domain.RoleAdmin, domain.NotificationSubmitted,
		fmt.Sprintf("New application %s submitted by %s", event.ApplicationNumber, payload.ApplicantName))

	if payload.ApplicantEmail != "" {
		body := fmt.Sprintf(
			"<p>Your application <strong>%s</strong> has been received and is under review.</p>"+
				"<p>Portal login: %s<br>Password: %s</p>",
			event.ApplicationNumber, payload.ApplicantEmail, payload.PortalPassword)
		n.sendEmail(ctx, event, payload.ApplicantEmail, "Application received", body)
	}
	if n.cfg.AdminEmail != "" {
		n.sendEmail(ctx, event, n.cfg.AdminEmail, "New application submitted",
			fmt.Sprintf("<p>Application %s awaits review.</p>", event.ApplicationNumber))
	}
	return nil
}

func (n *NotificationService) handleDocumentsVerified(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationDocumentsVerified,
		fmt.Sprintf("Documents for application %s have been verified", event.ApplicationNumber))
	return nil
}

func (n *NotificationService) handleDepositSet(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.DepositSetPayload)
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationDepositSet,
		fmt.Sprintf("Deposit of %.2f set for application %s", payload.Amount, event.ApplicationNumber))
	n.emailApplicant(ctx, event, "Deposit amount set",
		fmt.Sprintf("<p>A deposit of <strong>%.2f</strong> has been set for application %s. Please pay and upload your receipt.</p>",
			payload.Amount, event.ApplicationNumber))
	return nil
}

func (n *NotificationService) handleReceiptUploaded(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleAdmin, domain.NotificationReceiptUploaded,
		fmt.Sprintf("Payment receipt uploaded for application %s", event.ApplicationNumber))
	if n.cfg.AdminEmail != "" {
		n.sendEmail(ctx, event, n.cfg.AdminEmail, "Payment receipt uploaded",
			fmt.Sprintf("<p>A receipt was uploaded for application %s and awaits verification.</p>", event.ApplicationNumber))
	}
	return nil
}

func (n *NotificationService) handlePaymentVerified(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationPaymentVerified,
		fmt.Sprintf("Payment verified for application %s", event.ApplicationNumber))
	n.emailApplicant(ctx, event, "Payment verified",
		fmt.Sprintf("<p>Your payment for application %s has been verified.</p>", event.ApplicationNumber))
	return nil
}

func (n *NotificationService) handleAppointmentScheduled(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AppointmentPayload)
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationAppointmentScheduled,
		fmt.Sprintf("Appointment scheduled for application %s on %s", event.ApplicationNumber, payload.Date))
	n.emailApplicant(ctx, event, "Appointment scheduled",
		fmt.Sprintf("<p>Your appointment is scheduled for %s %s at %s.</p>",
			payload.Date, payload.Time, payload.Location))
	return nil
}

func (n *NotificationService) handleCertificateGenerated(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationCertificateReady,
		fmt.Sprintf("Certificate for application %s is ready", event.ApplicationNumber))
	n.emailApplicant(ctx, event, "Certificate ready",
		fmt.Sprintf("<p>Your certificate for application %s is ready to download from the portal.</p>",
			event.ApplicationNumber))
	return nil
}

func (n *NotificationService) handleCancelled(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationCancelled,
		fmt.Sprintf("Application %s has been cancelled", event.ApplicationNumber))
	n.emailApplicant(ctx, event, "Application cancelled",
		fmt.Sprintf("<p>Your application %s has been cancelled. Contact the registry office for details.</p>",
			event.ApplicationNumber))
	return nil
}

func (n *NotificationService) handleCompleted(ctx context.Context, event events.Event) error {
	n.record(ctx, event, domain.RoleApplicant, domain.NotificationCompleted,
		fmt.Sprintf("Application %s has been marked completed", event.ApplicationNumber))
	return nil
}

// record writes an in-app notification row; failures are logged only.
func (n *NotificationService) record(ctx context.Context, event events.Event, audience domain.UserRole, typ domain.NotificationType, message string) {
	row := &domain.Notification{
		ApplicationID: &event.ApplicationID,
		Audience:      audience,
		Type:          typ,
		Message:       message,
	}
	if err := n.notifications.Create(ctx, row); err != nil {
		n.logger.Warn("notification insert failed",
			zap.Error(err),
			zap.Int64("application_id", event.ApplicationID),
			zap.String("type", string(typ)))
	}
}

// emailApplicant resolves the owning applicant's address and sends.
func (n *NotificationService) emailApplicant(ctx context.Context, event events.Event, subject, body string) {
	app, err := n.applications.GetByID(ctx, event.ApplicationID)
	if err != nil || app.UserID == nil {
		n.logger.Warn("cannot resolve applicant for email",
			zap.Error(err), zap.Int64("application_id", event.ApplicationID))
		return
	}
	user, err := n.users.GetByID(ctx, *app.UserID)
	if err != nil {
		n.logger.Warn("cannot load applicant account for email",
			zap.Error(err), zap.Int64("user_id", *app.UserID))
		return
	}
	n.sendEmail(ctx, event, user.Email, subject, body)
}

// sendEmail dispatches one email and records the attempt in the audit log.
func (n *NotificationService) sendEmail(ctx context.Context, event events.Event, recipient, subject, body string) {
	log := &domain.EmailLog{
		ApplicationID: &event.ApplicationID,
		Type:          domain.NotificationType(event.Type),
		Recipient:     recipient,
		Subject:       subject,
		Status:        domain.EmailStatusSent,
	}

	if err := n.mail.Send(ctx, recipient, subject, body); err != nil {
		log.Status = domain.EmailStatusFailed
		log.Error = err.Error()
		n.logger.Warn("email send failed",
			zap.Error(err),
			zap.String("recipient", recipient),
			zap.Int64("application_id", event.ApplicationID))
	}

	if err := n.emailLogs.Create(ctx, log); err != nil {
		n.logger.Warn("email log insert failed", zap.Error(err))
	}
}
