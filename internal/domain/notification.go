package domain

import "time"

// NotificationType tags the lifecycle step a notification originated from.
type NotificationType string

const (
	NotificationSubmitted            NotificationType = "application_submitted"
	NotificationDocumentsVerified    NotificationType = "documents_verified"
	NotificationDepositSet           NotificationType = "deposit_set"
	NotificationReceiptUploaded      NotificationType = "receipt_uploaded"
	NotificationPaymentVerified      NotificationType = "payment_verified"
	NotificationAppointmentScheduled NotificationType = "appointment_scheduled"
	NotificationCertificateReady     NotificationType = "certificate_ready"
	NotificationCancelled            NotificationType = "application_cancelled"
	NotificationCompleted            NotificationType = "application_completed"
)

// Notification is a best-effort in-app message addressed to a role audience.
// It is written outside the transaction that triggered it; a failed insert
// never rolls back the application change.
type Notification struct {
	ID            int64
	ApplicationID *int64
	Audience      UserRole
	Type          NotificationType
	Message       string
	IsRead        bool
	CreatedAt     time.Time
}

// EmailStatus marks the outcome of one send attempt.
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailLog is the audit record of an outbound email attempt.
type EmailLog struct {
	ID            int64
	ApplicationID *int64
	Type          NotificationType
	Recipient     string
	Subject       string
	Status        EmailStatus
	Error         string
	CreatedAt     time.Time
}
