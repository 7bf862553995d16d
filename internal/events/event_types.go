package events

import (
	"time"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted  EventType = "application_submitted"
	EventDocumentsVerified     EventType = "documents_verified"
	EventDepositSet            EventType = "deposit_set"
	EventReceiptUploaded       EventType = "receipt_uploaded"
	EventPaymentVerified       EventType = "payment_verified"
	EventAppointmentScheduled  EventType = "appointment_scheduled"
	EventCertificateGenerated  EventType = "certificate_generated"
	EventApplicationCancelled  EventType = "application_cancelled"
	EventApplicationCompleted  EventType = "application_completed"
)

// Event represents a domain event emitted after a lifecycle transition has
// committed. Handlers are best-effort; they can never undo the transition.
type Event struct {
	ID                string      `json:"id"`
	Type              EventType   `json:"type"`
	ApplicationID     int64       `json:"application_id"`
	ApplicationNumber string      `json:"application_number"`
	ActorUserID       *int64      `json:"actor_user_id,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
	Payload           interface{} `json:"payload,omitempty"`
}

// SubmittedPayload accompanies EventApplicationSubmitted.
type SubmittedPayload struct {
	ApplicantEmail string `json:"applicant_email"`
	ApplicantName  string `json:"applicant_name"`
	PortalPassword string `json:"-"`
	WitnessCount   int    `json:"witness_count"`
}

// DepositSetPayload accompanies EventDepositSet.
type DepositSetPayload struct {
	Amount float64 `json:"amount"`
}

// StatusChangedPayload accompanies transition events.
type StatusChangedPayload struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
}

// AppointmentPayload accompanies EventAppointmentScheduled.
type AppointmentPayload struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// CertificatePayload accompanies EventCertificateGenerated.
type CertificatePayload struct {
	Path string `json:"path"`
}
