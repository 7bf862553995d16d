package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/nikah-service/internal/certificate"
	"github.com/spec-kit/nikah-service/internal/dateutil"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/events"
	"github.com/spec-kit/nikah-service/internal/observability"
	"github.com/spec-kit/nikah-service/internal/repository"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// allowedTransitions is the lifecycle state machine. The happy path is
// linear; cancelled is reachable from every non-terminal state.
var allowedTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.StatusAdminReview:          {domain.StatusPaymentPending, domain.StatusCancelled},
	domain.StatusPaymentPending:       {domain.StatusPaymentVerified, domain.StatusCancelled},
	domain.StatusPaymentVerified:      {domain.StatusAppointmentScheduled, domain.StatusCancelled},
	domain.StatusAppointmentScheduled: {domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusCompleted:            {},
	domain.StatusCancelled:            {},
}

func isValidTransition(current, next domain.ApplicationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// StatusCache caches public status lookups. *persistence.Redis satisfies it;
// a nil cache disables caching.
type StatusCache interface {
	GetString(ctx context.Context, key string) (string, bool)
	SetString(ctx context.Context, key, val string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

const statusCacheTTL = 60 * time.Second

// StatusView is the public status query response.
type StatusView struct {
	ID                int64                    `json:"id"`
	ApplicationNumber string                   `json:"application_number"`
	Status            domain.ApplicationStatus `json:"status"`
	PaymentCompleted  bool                     `json:"payment_completed"`
}

// DashboardView is the applicant self-service read model. Password material
// never appears here.
type DashboardView struct {
	Application *domain.Application
	Witnesses   []domain.Witness
}

// AppointmentInput carries appointment scheduling fields.
type AppointmentInput struct {
	Date     string
	Time     string
	Location string
}

// ApplicationService is the lifecycle engine: every state transition of an
// application runs through here, with its guard checked before any write.
type ApplicationService struct {
	applications repository.ApplicationRepository
	witnesses    repository.WitnessRepository
	users        repository.UserRepository
	dispatcher   events.Dispatcher
	renderer     certificate.Renderer
	cache        StatusCache
	metrics      *observability.Metrics
}

// ApplicationDependencies bundles requirements for the lifecycle engine.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	WitnessRepo     repository.WitnessRepository
	UserRepo        repository.UserRepository
	Dispatcher      events.Dispatcher
	Renderer        certificate.Renderer
	Cache           StatusCache
	Metrics         *observability.Metrics
}

// NewApplicationService constructs the engine.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		witnesses:    deps.WitnessRepo,
		users:        deps.UserRepo,
		dispatcher:   deps.Dispatcher,
		renderer:     deps.Renderer,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
	}
}

// VerifyDocuments marks identity documents as checked by staff. Both the
// groom and bride ID documents must already be on file. Does not advance
// status.
func (s *ApplicationService) VerifyDocuments(ctx context.Context, id, adminID int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.GroomIDPath == nil || app.BrideIDPath == nil {
		return nil, apperrors.NewPreconditionFailed("groom and bride ID documents must be uploaded before verification")
	}

	now := time.Now()
	app.DocumentsVerified = true
	app.VerifiedBy = &adminID
	app.DocumentsVerifiedAt = &now
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:              events.EventDocumentsVerified,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &adminID,
	})
	return app, nil
}

// SetDeposit records the fee amount and moves the application to
// payment_pending. Repeating the call overwrites the amount.
func (s *ApplicationService) SetDeposit(ctx context.Context, id int64, amount float64) (*domain.Application, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("deposit amount must be greater than zero",
			map[string]any{"field": "amount"})
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.Status != domain.StatusAdminReview && app.Status != domain.StatusPaymentPending {
		return nil, apperrors.NewPreconditionFailed(
			fmt.Sprintf("deposit cannot be set while application is %s", app.Status))
	}

	oldStatus := app.Status
	app.DepositAmount = &amount
	app.PaymentStatus = domain.PaymentStatusAmountSet
	app.Status = domain.StatusPaymentPending
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventDepositSet,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Payload:           events.DepositSetPayload{Amount: amount},
	})
	return app, nil
}

// AttachReceipt stores the applicant's payment receipt reference. Only the
// owning applicant may attach; status remains payment_pending awaiting staff
// verification.
func (s *ApplicationService) AttachReceipt(ctx context.Context, id, applicantUserID int64, receiptPath string) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.UserID == nil || *app.UserID != applicantUserID {
		return nil, apperrors.NewForbidden("not the owner of this application")
	}
	if app.Status != domain.StatusPaymentPending {
		return nil, apperrors.NewPreconditionFailed("receipt can only be uploaded while payment is pending")
	}

	app.PaymentReceiptPath = &receiptPath
	app.PaymentStatus = domain.PaymentStatusPaid
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:              events.EventReceiptUploaded,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &applicantUserID,
	})
	return app, nil
}

// documentSlots maps upload slot names to their application column.
var documentSlots = map[string]func(app *domain.Application) **string{
	"groom_id":            func(app *domain.Application) **string { return &app.GroomIDPath },
	"bride_id":            func(app *domain.Application) **string { return &app.BrideIDPath },
	"groom_photo":         func(app *domain.Application) **string { return &app.GroomPhotoPath },
	"bride_photo":         func(app *domain.Application) **string { return &app.BridePhotoPath },
	"groom_birth_cert":    func(app *domain.Application) **string { return &app.GroomBirthCertPath },
	"bride_birth_cert":    func(app *domain.Application) **string { return &app.BrideBirthCertPath },
	"groom_divorce_cert":  func(app *domain.Application) **string { return &app.GroomDivorceCertPath },
	"bride_divorce_cert":  func(app *domain.Application) **string { return &app.BrideDivorceCertPath },
	"wali_id":             func(app *domain.Application) **string { return &app.WaliIDPath },
	"representative_auth": func(app *domain.Application) **string { return &app.RepresentativeAuthPath },
}

// DocumentSlotValid reports whether slot names a known document column.
func DocumentSlotValid(slot string) bool {
	_, ok := documentSlots[slot]
	return ok
}

// AttachDocument stores an uploaded document reference in the named slot.
// Only the owning applicant may attach, and only while the case is open.
// Re-uploading a slot overwrites the previous reference.
func (s *ApplicationService) AttachDocument(ctx context.Context, id, applicantUserID int64, slot, path string) (*domain.Application, error) {
	setter, ok := documentSlots[slot]
	if !ok {
		return nil, apperrors.NewValidationError("unknown document slot",
			map[string]any{"slot": slot})
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.UserID == nil || *app.UserID != applicantUserID {
		return nil, apperrors.NewForbidden("not the owner of this application")
	}
	if app.Status.IsTerminal() {
		return nil, apperrors.NewPreconditionFailed("documents cannot be changed on a closed application")
	}

	*setter(app) = &path
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	return app, nil
}

// VerifyPayment confirms the deposit was received and advances to
// payment_verified. The deposit guard holds regardless of how the
// application reached its current state.
func (s *ApplicationService) VerifyPayment(ctx context.Context, id, adminID int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.DepositAmount == nil || *app.DepositAmount <= 0 {
		return nil, apperrors.NewPreconditionFailed("deposit amount must be set before payment can be verified")
	}
	if !isValidTransition(app.Status, domain.StatusPaymentVerified) {
		return nil, apperrors.NewPreconditionFailed(
			fmt.Sprintf("cannot verify payment while application is %s", app.Status))
	}

	now := time.Now()
	oldStatus := app.Status
	app.PaymentStatus = domain.PaymentStatusVerified
	app.PaymentVerifiedAt = &now
	app.Status = domain.StatusPaymentVerified
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventPaymentVerified,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &adminID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: app.Status,
		},
	})
	return app, nil
}

// ScheduleAppointment sets the solemnisation appointment once payment is
// verified. The date is normalized; an unparseable date is rejected here
// because the appointment gate depends on it.
func (s *ApplicationService) ScheduleAppointment(ctx context.Context, id int64, input AppointmentInput) (*domain.Application, error) {
	date, ok := dateutil.Normalize(input.Date, false)
	if !ok {
		return nil, apperrors.NewValidationError("appointment date is not a valid date",
			map[string]any{"field": "date"})
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !isValidTransition(app.Status, domain.StatusAppointmentScheduled) {
		return nil, apperrors.NewPreconditionFailed("payment must be verified before scheduling an appointment")
	}

	oldStatus := app.Status
	app.AppointmentDate = &date
	app.AppointmentTime = strings.TrimSpace(input.Time)
	app.AppointmentLocation = strings.TrimSpace(input.Location)
	app.Status = domain.StatusAppointmentScheduled
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventAppointmentScheduled,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Payload: events.AppointmentPayload{
			Date:     date,
			Time:     app.AppointmentTime,
			Location: app.AppointmentLocation,
		},
	})
	return app, nil
}

// GenerateCertificate renders the final document and completes the
// application. Rendering failure is fatal to this request: status is left
// untouched and the error is returned.
func (s *ApplicationService) GenerateCertificate(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.AppointmentDate == nil {
		return nil, apperrors.NewPreconditionFailed("appointment must be scheduled before generating the certificate")
	}

	witnessRows, err := s.witnesses.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	path, err := s.renderer.Render(app, witnessRows)
	if err != nil {
		return nil, apperrors.NewDomainError("RENDERING_FAILED", "certificate rendering failed",
			502, map[string]any{"application_id": app.ID})
	}

	now := time.Now()
	oldStatus := app.Status
	app.CertificatePath = &path
	app.CertificateGeneratedAt = &now
	app.Status = domain.StatusCompleted
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventCertificateGenerated,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Payload:           events.CertificatePayload{Path: path},
	})
	return app, nil
}

// ForceComplete is the explicit admin override: it sets completed without
// the appointment or certificate guards. It exists for cases resolved
// outside the normal flow and is routed and audited separately.
func (s *ApplicationService) ForceComplete(ctx context.Context, id, adminID int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.Status == domain.StatusCompleted {
		return app, nil
	}

	oldStatus := app.Status
	app.Status = domain.StatusCompleted
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventApplicationCompleted,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &adminID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.StatusCompleted,
		},
	})
	return app, nil
}

// Cancel aborts a case from any non-terminal state.
func (s *ApplicationService) Cancel(ctx context.Context, id, adminID int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if app.Status.IsTerminal() {
		return nil, apperrors.NewPreconditionFailed(
			fmt.Sprintf("cannot cancel an application that is %s", app.Status))
	}

	oldStatus := app.Status
	app.Status = domain.StatusCancelled
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordTransition(oldStatus, app.Status)
	s.invalidateStatus(ctx, app.ID)

	s.publish(ctx, events.Event{
		Type:              events.EventApplicationCancelled,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &adminID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.StatusCancelled,
		},
	})
	return app, nil
}

// GetStatus is the public status query, cached briefly since applicants poll
// it. The cache is invalidated on every transition.
func (s *ApplicationService) GetStatus(ctx context.Context, id int64) (*StatusView, error) {
	key := statusCacheKey(id)
	if s.cache != nil {
		if cached, ok := s.cache.GetString(ctx, key); ok {
			var view StatusView
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				return &view, nil
			}
		}
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	view := &StatusView{
		ID:                app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		PaymentCompleted:  app.PaymentCompleted(),
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(view); err == nil {
			s.cache.SetString(ctx, key, string(encoded), statusCacheTTL)
		}
	}
	return view, nil
}

// GetDashboard returns the applicant's own application with witnesses in
// print order. Handlers serialize through DTOs that carry no password field.
func (s *ApplicationService) GetDashboard(ctx context.Context, userID int64) (*DashboardView, error) {
	app, err := s.applications.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	witnessRows, err := s.witnesses.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &DashboardView{Application: app, Witnesses: witnessRows}, nil
}

// GetDetail returns an application with witnesses for staff review.
func (s *ApplicationService) GetDetail(ctx context.Context, id int64) (*DashboardView, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	witnessRows, err := s.witnesses.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &DashboardView{Application: app, Witnesses: witnessRows}, nil
}

// List returns applications matching the staff filter.
func (s *ApplicationService) List(ctx context.Context, filter repository.ApplicationFilter) ([]domain.Application, error) {
	apps, err := s.applications.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return apps, nil
}

// SoftDelete flags an application deleted without removing rows.
func (s *ApplicationService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.applications.SoftDelete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateStatus(ctx, id)
	return nil
}

// DeleteUser removes an account. The schema's ON DELETE SET NULL leaves the
// linked application in place with a null owner.
func (s *ApplicationService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func statusCacheKey(id int64) string {
	return fmt.Sprintf("application:%d:status", id)
}

func (s *ApplicationService) recordTransition(old, next domain.ApplicationStatus) {
	if old != next {
		s.metrics.RecordTransition(string(old), string(next))
	}
}

func (s *ApplicationService) invalidateStatus(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Delete(ctx, statusCacheKey(id))
	}
}

func (s *ApplicationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
