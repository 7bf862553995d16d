package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/nikah-service/internal/auth"
	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/dateutil"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/events"
	"github.com/spec-kit/nikah-service/internal/repository"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// maxWitnesses bounds witness slots on the submission form.
const maxWitnesses = 4

// numberRetryAttempts bounds regeneration after application-number collisions.
const numberRetryAttempts = 5

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// WitnessInput is one witness slot from the form; slots without a name are
// skipped, keeping their 1-based position as witness_order for the ones kept.
type WitnessInput struct {
	Name       string
	FatherName string
	BirthDate  string
	BirthPlace string
	Address    string
}

// SubmissionInput is the normalized applicant form payload.
type SubmissionInput struct {
	Email         string
	ContactNumber string

	GroomName       string
	GroomFatherName string
	GroomBirthDate  string
	GroomBirthPlace string
	GroomAddress    string
	BrideName       string
	BrideFatherName string
	BrideBirthDate  string
	BrideBirthPlace string
	BrideAddress    string

	GroomRepresentative string
	BrideRepresentative string

	MahrAmount string
	MahrType   string

	SolemnisationDate  string
	SolemnisationTime  string
	SolemnisationPlace string

	Witnesses []WitnessInput
}

// SubmissionResult is returned to the caller after a committed submission.
type SubmissionResult struct {
	ApplicationID     int64
	ApplicationNumber string
	UserID            int64
}

// SubmissionService runs the transactional submission workflow: validate,
// create user + application + witnesses atomically, then trigger best-effort
// notifications.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	dispatcher  events.Dispatcher
	numbering   config.NumberingConfig
	authCfg     config.AuthConfig
}

// SubmissionDependencies bundles requirements for the submission service.
type SubmissionDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	Dispatcher     events.Dispatcher
}

// NewSubmissionService constructs the service.
func NewSubmissionService(cfg config.Config, deps SubmissionDependencies) *SubmissionService {
	return &SubmissionService{
		submissions: deps.SubmissionRepo,
		dispatcher:  deps.Dispatcher,
		numbering:   cfg.Numbering,
		authCfg:     cfg.Auth,
	}
}

// Submit validates the form, commits the multi-row write, and publishes the
// submitted event after commit. Validation failures never touch storage.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	portalPassword, err := auth.GeneratePortalPassword(s.authCfg.PortalPasswordLength)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	passwordHash, err := auth.HashPassword(portalPassword, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	applicantName := strings.TrimSpace(input.GroomName)
	user := &domain.User{
		FullName:     applicantName,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: passwordHash,
		Role:         domain.RoleApplicant,
	}

	app := buildApplication(input)
	witnesses := buildWitnesses(input.Witnesses)

	// An application-number collision is retryable; a duplicate email is not.
	for attempt := 0; ; attempt++ {
		app.ApplicationNumber = GenerateApplicationNumber(s.numbering.Prefix)
		err = s.submissions.CreateSubmission(ctx, user, app, witnesses)
		if err == nil {
			break
		}
		if isNumberCollision(err) && attempt < numberRetryAttempts-1 {
			continue
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:              events.EventApplicationSubmitted,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		ActorUserID:       &user.ID,
		Payload: events.SubmittedPayload{
			ApplicantEmail: user.Email,
			ApplicantName:  user.FullName,
			PortalPassword: portalPassword,
			WitnessCount:   len(witnesses),
		},
	})

	return &SubmissionResult{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		UserID:            user.ID,
	}, nil
}

func validateSubmission(input SubmissionInput) error {
	email := strings.TrimSpace(input.Email)
	if email == "" || !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("valid email is required",
			map[string]any{"field": "email"})
	}
	if strings.TrimSpace(input.ContactNumber) == "" {
		return apperrors.NewValidationError("contact number is required",
			map[string]any{"field": "contactnumber"})
	}
	if strings.TrimSpace(input.GroomName) == "" {
		return apperrors.NewValidationError("groom name is required",
			map[string]any{"field": "groom_name"})
	}
	if strings.TrimSpace(input.BrideName) == "" {
		return apperrors.NewValidationError("bride name is required",
			map[string]any{"field": "bride_name"})
	}
	if len(input.Witnesses) > maxWitnesses {
		return apperrors.NewValidationError("too many witnesses",
			map[string]any{"max": maxWitnesses})
	}
	return nil
}

func buildApplication(input SubmissionInput) *domain.Application {
	return &domain.Application{
		Status:             domain.StatusAdminReview,
		PaymentStatus:      domain.PaymentStatusNone,
		GroomName:          strings.TrimSpace(input.GroomName),
		GroomFatherName:    strings.TrimSpace(input.GroomFatherName),
		GroomBirthDate:     dateutil.NormalizePtr(input.GroomBirthDate, false),
		GroomBirthPlace:    strings.TrimSpace(input.GroomBirthPlace),
		GroomAddress:       strings.TrimSpace(input.GroomAddress),
		GroomContactNumber: strings.TrimSpace(input.ContactNumber),
		BrideName:          strings.TrimSpace(input.BrideName),
		BrideFatherName:    strings.TrimSpace(input.BrideFatherName),
		BrideBirthDate:     dateutil.NormalizePtr(input.BrideBirthDate, false),
		BrideBirthPlace:    strings.TrimSpace(input.BrideBirthPlace),
		BrideAddress:       strings.TrimSpace(input.BrideAddress),

		GroomRepresentative: strings.TrimSpace(input.GroomRepresentative),
		BrideRepresentative: strings.TrimSpace(input.BrideRepresentative),

		MahrAmount: strings.TrimSpace(input.MahrAmount),
		MahrType:   strings.TrimSpace(input.MahrType),

		SolemnisationDate:  dateutil.NormalizePtr(input.SolemnisationDate, false),
		SolemnisationTime:  strings.TrimSpace(input.SolemnisationTime),
		SolemnisationPlace: strings.TrimSpace(input.SolemnisationPlace),
	}
}

// buildWitnesses drops nameless slots while preserving each kept witness's
// original 1-based form position as its order.
func buildWitnesses(inputs []WitnessInput) []domain.Witness {
	var witnesses []domain.Witness
	for i, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			continue
		}
		witnesses = append(witnesses, domain.Witness{
			Name:         strings.TrimSpace(in.Name),
			FatherName:   strings.TrimSpace(in.FatherName),
			BirthDate:    dateutil.NormalizePtr(in.BirthDate, false),
			BirthPlace:   strings.TrimSpace(in.BirthPlace),
			Address:      strings.TrimSpace(in.Address),
			WitnessOrder: i + 1,
		})
	}
	return witnesses
}

func isNumberCollision(err error) bool {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "DUPLICATE_KEY" {
		return false
	}
	field, _ := domainErr.Details["field"].(string)
	return field == "application_number"
}

func (s *SubmissionService) publish(ctx context.Context, event events.Event) {
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
