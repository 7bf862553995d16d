package service

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/events"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

type fakeSubmissionRepo struct {
	calls     int
	failUntil int
	failWith  error
	numbers   []string

	lastUser      *domain.User
	lastApp       *domain.Application
	lastWitnesses []domain.Witness
}

func (f *fakeSubmissionRepo) CreateSubmission(_ context.Context, user *domain.User, app *domain.Application, witnesses []domain.Witness) error {
	f.calls++
	f.numbers = append(f.numbers, app.ApplicationNumber)
	if f.calls <= f.failUntil {
		return f.failWith
	}
	user.ID = 7
	app.ID = 42
	f.lastUser = user
	f.lastApp = app
	f.lastWitnesses = witnesses
	return nil
}

type fakeDispatcher struct {
	published []events.Event
}

func (f *fakeDispatcher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			BcryptCost:           bcrypt.MinCost,
			PortalPasswordLength: 10,
		},
		Numbering: config.NumberingConfig{Prefix: "NIK"},
	}
}

func validInput() SubmissionInput {
	return SubmissionInput{
		Email:         "bride.groom@example.com",
		ContactNumber: "0123456789",
		GroomName:     "Ahmad bin Ismail",
		BrideName:     "Aisyah binti Yusof",
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*SubmissionInput)
	}{
		{"missing email", func(in *SubmissionInput) { in.Email = "" }},
		{"malformed email", func(in *SubmissionInput) { in.Email = "not-an-email" }},
		{"missing contact number", func(in *SubmissionInput) { in.ContactNumber = " " }},
		{"missing groom name", func(in *SubmissionInput) { in.GroomName = "" }},
		{"missing bride name", func(in *SubmissionInput) { in.BrideName = "" }},
		{"too many witnesses", func(in *SubmissionInput) {
			in.Witnesses = make([]WitnessInput, maxWitnesses+1)
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeSubmissionRepo{}
			svc := NewSubmissionService(testConfig(), SubmissionDependencies{SubmissionRepo: repo})

			input := validInput()
			tc.mutate(&input)

			_, err := svc.Submit(context.Background(), input)
			if !apperrors.IsCode(err, "VALIDATION_FAILED") {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
			if repo.calls != 0 {
				t.Fatalf("validation failure must not touch storage, got %d calls", repo.calls)
			}
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	t.Parallel()
	repo := &fakeSubmissionRepo{}
	dispatcher := &fakeDispatcher{}
	svc := NewSubmissionService(testConfig(), SubmissionDependencies{
		SubmissionRepo: repo,
		Dispatcher:     dispatcher,
	})

	input := validInput()
	input.Witnesses = []WitnessInput{
		{Name: "Hassan bin Omar"},
		{Name: "Ali bin Abu"},
	}

	result, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ApplicationID != 42 || result.UserID != 7 {
		t.Fatalf("unexpected result ids: %+v", result)
	}
	if !strings.HasPrefix(result.ApplicationNumber, "NIK-") {
		t.Fatalf("application number %q missing prefix", result.ApplicationNumber)
	}

	if repo.lastApp.Status != domain.StatusAdminReview {
		t.Fatalf("new application status = %s, want %s", repo.lastApp.Status, domain.StatusAdminReview)
	}
	if repo.lastApp.PaymentStatus != domain.PaymentStatusNone {
		t.Fatalf("new application payment status = %s", repo.lastApp.PaymentStatus)
	}
	if repo.lastUser.Role != domain.RoleApplicant {
		t.Fatalf("account role = %s, want applicant", repo.lastUser.Role)
	}
	if repo.lastUser.PasswordHash == "" {
		t.Fatal("account must carry a password hash")
	}

	if len(dispatcher.published) != 1 {
		t.Fatalf("expected one submitted event, got %d", len(dispatcher.published))
	}
	event := dispatcher.published[0]
	if event.Type != events.EventApplicationSubmitted {
		t.Fatalf("event type = %s", event.Type)
	}
	payload, ok := event.Payload.(events.SubmittedPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", event.Payload)
	}
	if payload.PortalPassword == "" {
		t.Fatal("submitted payload must carry the portal password for the welcome email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.lastUser.PasswordHash), []byte(payload.PortalPassword)); err != nil {
		t.Fatalf("stored hash does not match generated password: %v", err)
	}
	if payload.WitnessCount != 2 {
		t.Fatalf("witness count = %d, want 2", payload.WitnessCount)
	}
}

func TestSubmitWitnessOrderSkipsEmptySlots(t *testing.T) {
	t.Parallel()
	repo := &fakeSubmissionRepo{}
	svc := NewSubmissionService(testConfig(), SubmissionDependencies{SubmissionRepo: repo})

	input := validInput()
	input.Witnesses = []WitnessInput{
		{Name: "Hassan bin Omar"},
		{Name: ""},
		{Name: "Ali bin Abu"},
		{Name: "  "},
	}

	if _, err := svc.Submit(context.Background(), input); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(repo.lastWitnesses) != 2 {
		t.Fatalf("expected 2 witnesses, got %d", len(repo.lastWitnesses))
	}
	// Empty slots are skipped, not renumbered: the third form slot keeps
	// order 3.
	if repo.lastWitnesses[0].WitnessOrder != 1 || repo.lastWitnesses[1].WitnessOrder != 3 {
		t.Fatalf("witness orders = %d,%d want 1,3",
			repo.lastWitnesses[0].WitnessOrder, repo.lastWitnesses[1].WitnessOrder)
	}
}

func TestSubmitRetriesNumberCollision(t *testing.T) {
	t.Parallel()
	repo := &fakeSubmissionRepo{
		failUntil: 2,
		failWith:  apperrors.NewDuplicateKey("application_number"),
	}
	svc := NewSubmissionService(testConfig(), SubmissionDependencies{SubmissionRepo: repo})

	result, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.calls)
	}
	if repo.numbers[0] == result.ApplicationNumber && repo.numbers[1] == result.ApplicationNumber {
		t.Fatal("a fresh number must be generated on each retry")
	}
}

func TestSubmitGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()
	repo := &fakeSubmissionRepo{
		failUntil: numberRetryAttempts + 1,
		failWith:  apperrors.NewDuplicateKey("application_number"),
	}
	svc := NewSubmissionService(testConfig(), SubmissionDependencies{SubmissionRepo: repo})

	_, err := svc.Submit(context.Background(), validInput())
	if !apperrors.IsCode(err, "DUPLICATE_KEY") {
		t.Fatalf("expected DUPLICATE_KEY after exhausted retries, got %v", err)
	}
	if repo.calls != numberRetryAttempts {
		t.Fatalf("expected %d attempts, got %d", numberRetryAttempts, repo.calls)
	}
}

func TestSubmitDuplicateEmailNotRetried(t *testing.T) {
	t.Parallel()
	repo := &fakeSubmissionRepo{
		failUntil: 1,
		failWith:  apperrors.NewDuplicateKey("email"),
	}
	dispatcher := &fakeDispatcher{}
	svc := NewSubmissionService(testConfig(), SubmissionDependencies{
		SubmissionRepo: repo,
		Dispatcher:     dispatcher,
	})

	_, err := svc.Submit(context.Background(), validInput())
	if !apperrors.IsCode(err, "DUPLICATE_KEY") {
		t.Fatalf("expected DUPLICATE_KEY, got %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("duplicate email must not be retried, got %d calls", repo.calls)
	}
	if len(dispatcher.published) != 0 {
		t.Fatal("no event may be published for a rolled-back submission")
	}
}
