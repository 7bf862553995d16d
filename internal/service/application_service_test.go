package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nikah-service/internal/domain"
	"github.com/spec-kit/nikah-service/internal/events"
	"github.com/spec-kit/nikah-service/internal/observability"
	"github.com/spec-kit/nikah-service/internal/repository"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

type fakeApplicationRepo struct {
	apps        map[int64]*domain.Application
	getCalls    int
	updateCalls int
}

func newFakeApplicationRepo(apps ...*domain.Application) *fakeApplicationRepo {
	repo := &fakeApplicationRepo{apps: map[int64]*domain.Application{}}
	for _, app := range apps {
		repo.apps[app.ID] = app
	}
	return repo
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id int64) (*domain.Application, error) {
	f.getCalls++
	app, ok := f.apps[id]
	if !ok || app.IsDeleted {
		return nil, pgx.ErrNoRows
	}
	clone := *app
	return &clone, nil
}

func (f *fakeApplicationRepo) GetByNumber(_ context.Context, number string) (*domain.Application, error) {
	for _, app := range f.apps {
		if app.ApplicationNumber == number && !app.IsDeleted {
			clone := *app
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeApplicationRepo) GetByUserID(_ context.Context, userID int64) (*domain.Application, error) {
	for _, app := range f.apps {
		if app.UserID != nil && *app.UserID == userID && !app.IsDeleted {
			clone := *app
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeApplicationRepo) Update(_ context.Context, app *domain.Application) error {
	f.updateCalls++
	if _, ok := f.apps[app.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeApplicationRepo) SoftDelete(_ context.Context, id int64) error {
	app, ok := f.apps[id]
	if !ok || app.IsDeleted {
		return pgx.ErrNoRows
	}
	app.IsDeleted = true
	return nil
}

func (f *fakeApplicationRepo) ListWithFilter(_ context.Context, _ repository.ApplicationFilter) ([]domain.Application, error) {
	var result []domain.Application
	for _, app := range f.apps {
		if !app.IsDeleted {
			result = append(result, *app)
		}
	}
	return result, nil
}

type fakeWitnessRepo struct {
	witnesses []domain.Witness
}

func (f *fakeWitnessRepo) ListByApplication(context.Context, int64) ([]domain.Witness, error) {
	return f.witnesses, nil
}

type fakeUserRepo struct {
	users   map[int64]*domain.User
	deleted []int64
}

func (f *fakeUserRepo) Create(context.Context, *domain.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *domain.User) error { return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRenderer struct {
	path string
	err  error
}

func (f *fakeRenderer) Render(*domain.Application, []domain.Witness) (string, error) {
	return f.path, f.err
}

type fakeCache struct {
	values  map[string]string
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) GetString(_ context.Context, key string) (string, bool) {
	val, ok := f.values[key]
	return val, ok
}

func (f *fakeCache) SetString(_ context.Context, key, val string, _ time.Duration) {
	f.values[key] = val
}

func (f *fakeCache) Delete(_ context.Context, key string) {
	f.deletes = append(f.deletes, key)
	delete(f.values, key)
}

func depositOf(amount float64) *float64 { return &amount }

func stringPtr(s string) *string { return &s }

func newTestApp(status domain.ApplicationStatus) *domain.Application {
	userID := int64(7)
	return &domain.Application{
		ID:                1,
		ApplicationNumber: "NIK-12345678-001",
		UserID:            &userID,
		Status:            status,
		GroomName:         "Ahmad bin Ismail",
		BrideName:         "Aisyah binti Yusof",
		PaymentStatus:     domain.PaymentStatusNone,
	}
}

func newEngine(repo *fakeApplicationRepo, opts ApplicationDependencies) *ApplicationService {
	opts.ApplicationRepo = repo
	if opts.WitnessRepo == nil {
		opts.WitnessRepo = &fakeWitnessRepo{}
	}
	if opts.UserRepo == nil {
		opts.UserRepo = &fakeUserRepo{}
	}
	return NewApplicationService(opts)
}

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current domain.ApplicationStatus
		next    domain.ApplicationStatus
		want    bool
	}{
		{domain.StatusAdminReview, domain.StatusPaymentPending, true},
		{domain.StatusAdminReview, domain.StatusCancelled, true},
		{domain.StatusAdminReview, domain.StatusPaymentVerified, false},
		{domain.StatusPaymentPending, domain.StatusPaymentVerified, true},
		{domain.StatusPaymentVerified, domain.StatusAppointmentScheduled, true},
		{domain.StatusPaymentVerified, domain.StatusCompleted, false},
		{domain.StatusAppointmentScheduled, domain.StatusCompleted, true},
		{domain.StatusCompleted, domain.StatusCancelled, false},
		{domain.StatusCancelled, domain.StatusAdminReview, false},
	}
	for _, tc := range tests {
		if got := isValidTransition(tc.current, tc.next); got != tc.want {
			t.Errorf("isValidTransition(%s, %s) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestVerifyPaymentRequiresDeposit(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusPaymentPending)
	repo := newFakeApplicationRepo(app)
	svc := newEngine(repo, ApplicationDependencies{})

	_, err := svc.VerifyPayment(context.Background(), app.ID, 99)
	if !apperrors.IsCode(err, "PRECONDITION_FAILED") {
		t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatal("guard rejection must not write")
	}
	if repo.apps[app.ID].Status != domain.StatusPaymentPending {
		t.Fatalf("status changed to %s", repo.apps[app.ID].Status)
	}
}

func TestDepositThenVerifyPayment(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	repo := newFakeApplicationRepo(app)
	dispatcher := &fakeDispatcher{}
	svc := newEngine(repo, ApplicationDependencies{Dispatcher: dispatcher})

	updated, err := svc.SetDeposit(context.Background(), app.ID, 150)
	if err != nil {
		t.Fatalf("set deposit: %v", err)
	}
	if updated.Status != domain.StatusPaymentPending || updated.PaymentStatus != domain.PaymentStatusAmountSet {
		t.Fatalf("after deposit: status=%s payment=%s", updated.Status, updated.PaymentStatus)
	}

	verified, err := svc.VerifyPayment(context.Background(), app.ID, 99)
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if verified.Status != domain.StatusPaymentVerified || verified.PaymentStatus != domain.PaymentStatusVerified {
		t.Fatalf("after verify: status=%s payment=%s", verified.Status, verified.PaymentStatus)
	}
	if verified.PaymentVerifiedAt == nil {
		t.Fatal("verification timestamp not set")
	}

	if len(dispatcher.published) != 2 {
		t.Fatalf("expected deposit + verification events, got %d", len(dispatcher.published))
	}
	if dispatcher.published[0].Type != events.EventDepositSet || dispatcher.published[1].Type != events.EventPaymentVerified {
		t.Fatalf("unexpected event sequence: %s, %s",
			dispatcher.published[0].Type, dispatcher.published[1].Type)
	}
}

func TestSetDepositRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status domain.ApplicationStatus
		amount float64
		code   string
	}{
		{"zero amount", domain.StatusAdminReview, 0, "VALIDATION_FAILED"},
		{"negative amount", domain.StatusAdminReview, -5, "VALIDATION_FAILED"},
		{"already verified", domain.StatusPaymentVerified, 100, "PRECONDITION_FAILED"},
		{"completed", domain.StatusCompleted, 100, "PRECONDITION_FAILED"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(tc.status)
			repo := newFakeApplicationRepo(app)
			svc := newEngine(repo, ApplicationDependencies{})

			_, err := svc.SetDeposit(context.Background(), app.ID, tc.amount)
			if !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestVerifyDocumentsRequiresIDDocuments(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	app.GroomIDPath = stringPtr("groom-id.pdf")
	repo := newFakeApplicationRepo(app)
	svc := newEngine(repo, ApplicationDependencies{})

	_, err := svc.VerifyDocuments(context.Background(), app.ID, 99)
	if !apperrors.IsCode(err, "PRECONDITION_FAILED") {
		t.Fatalf("expected PRECONDITION_FAILED with missing bride ID, got %v", err)
	}

	repo.apps[app.ID].BrideIDPath = stringPtr("bride-id.pdf")
	verified, err := svc.VerifyDocuments(context.Background(), app.ID, 99)
	if err != nil {
		t.Fatalf("verify documents: %v", err)
	}
	if !verified.DocumentsVerified || verified.VerifiedBy == nil || *verified.VerifiedBy != 99 {
		t.Fatalf("verification fields not recorded: %+v", verified)
	}
	if verified.Status != domain.StatusAdminReview {
		t.Fatal("document verification must not advance the lifecycle")
	}
}

func TestScheduleAppointment(t *testing.T) {
	t.Parallel()

	t.Run("requires verified payment", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusPaymentPending)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		_, err := svc.ScheduleAppointment(context.Background(), app.ID, AppointmentInput{Date: "2026-09-15"})
		if !apperrors.IsCode(err, "PRECONDITION_FAILED") {
			t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
		}
	})

	t.Run("rejects invalid date", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusPaymentVerified)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		_, err := svc.ScheduleAppointment(context.Background(), app.ID, AppointmentInput{Date: "31-02-2026"})
		if !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Fatalf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("normalizes date and advances", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusPaymentVerified)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		updated, err := svc.ScheduleAppointment(context.Background(), app.ID, AppointmentInput{
			Date:     "15-09-2026",
			Time:     "10:00",
			Location: "Pejabat Agama Daerah",
		})
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
		if updated.Status != domain.StatusAppointmentScheduled {
			t.Fatalf("status = %s", updated.Status)
		}
		if updated.AppointmentDate == nil || *updated.AppointmentDate != "2026-09-15" {
			t.Fatalf("appointment date = %v, want 2026-09-15", updated.AppointmentDate)
		}
	})
}

func TestGenerateCertificateRequiresAppointment(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusPaymentVerified)
	repo := newFakeApplicationRepo(app)
	svc := newEngine(repo, ApplicationDependencies{Renderer: &fakeRenderer{path: "cert.html"}})

	_, err := svc.GenerateCertificate(context.Background(), app.ID)
	if !apperrors.IsCode(err, "PRECONDITION_FAILED") {
		t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
	}
}

func TestGenerateCertificateRenderFailureLeavesStatus(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAppointmentScheduled)
	app.AppointmentDate = stringPtr("2026-09-15")
	repo := newFakeApplicationRepo(app)
	svc := newEngine(repo, ApplicationDependencies{
		Renderer: &fakeRenderer{err: errors.New("template exploded")},
	})

	_, err := svc.GenerateCertificate(context.Background(), app.ID)
	if !apperrors.IsCode(err, "RENDERING_FAILED") {
		t.Fatalf("expected RENDERING_FAILED, got %v", err)
	}
	if repo.apps[app.ID].Status != domain.StatusAppointmentScheduled {
		t.Fatalf("status changed to %s after failed render", repo.apps[app.ID].Status)
	}
	if repo.apps[app.ID].CertificatePath != nil {
		t.Fatal("certificate path recorded for a failed render")
	}
}

func TestGenerateCertificateCompletes(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAppointmentScheduled)
	app.AppointmentDate = stringPtr("2026-09-15")
	repo := newFakeApplicationRepo(app)
	dispatcher := &fakeDispatcher{}
	svc := newEngine(repo, ApplicationDependencies{
		Dispatcher: dispatcher,
		Renderer:   &fakeRenderer{path: "certificates/certificate-NIK-12345678-001.html"},
	})

	updated, err := svc.GenerateCertificate(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if updated.CertificatePath == nil || updated.CertificateGeneratedAt == nil {
		t.Fatal("certificate fields not recorded")
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventCertificateGenerated {
		t.Fatalf("unexpected events: %+v", dispatcher.published)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.ApplicationStatus{
		domain.StatusAdminReview,
		domain.StatusPaymentPending,
		domain.StatusPaymentVerified,
		domain.StatusAppointmentScheduled,
	} {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()
			app := newTestApp(status)
			app.DepositAmount = depositOf(100)
			repo := newFakeApplicationRepo(app)
			svc := newEngine(repo, ApplicationDependencies{})

			updated, err := svc.Cancel(context.Background(), app.ID, 99)
			if err != nil {
				t.Fatalf("cancel from %s: %v", status, err)
			}
			if updated.Status != domain.StatusCancelled {
				t.Fatalf("status = %s", updated.Status)
			}
		})
	}

	for _, status := range []domain.ApplicationStatus{domain.StatusCompleted, domain.StatusCancelled} {
		status := status
		t.Run("terminal "+string(status), func(t *testing.T) {
			t.Parallel()
			app := newTestApp(status)
			repo := newFakeApplicationRepo(app)
			svc := newEngine(repo, ApplicationDependencies{})

			if _, err := svc.Cancel(context.Background(), app.ID, 99); !apperrors.IsCode(err, "PRECONDITION_FAILED") {
				t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
			}
		})
	}
}

func TestForceCompleteSkipsGuardsAndIsIdempotent(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	repo := newFakeApplicationRepo(app)
	dispatcher := &fakeDispatcher{}
	svc := newEngine(repo, ApplicationDependencies{Dispatcher: dispatcher})

	updated, err := svc.ForceComplete(context.Background(), app.ID, 99)
	if err != nil {
		t.Fatalf("force complete: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", updated.Status)
	}

	again, err := svc.ForceComplete(context.Background(), app.ID, 99)
	if err != nil {
		t.Fatalf("repeat force complete: %v", err)
	}
	if again.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", again.Status)
	}
	if len(dispatcher.published) != 1 {
		t.Fatalf("repeat completion must not re-publish, got %d events", len(dispatcher.published))
	}
}

func TestAttachReceipt(t *testing.T) {
	t.Parallel()

	t.Run("owner only", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusPaymentPending)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		if _, err := svc.AttachReceipt(context.Background(), app.ID, 999, "r.pdf"); !apperrors.IsCode(err, "FORBIDDEN") {
			t.Fatalf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("payment pending only", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusAdminReview)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		if _, err := svc.AttachReceipt(context.Background(), app.ID, *app.UserID, "r.pdf"); !apperrors.IsCode(err, "PRECONDITION_FAILED") {
			t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
		}
	})

	t.Run("marks paid", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusPaymentPending)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		updated, err := svc.AttachReceipt(context.Background(), app.ID, *app.UserID, "r.pdf")
		if err != nil {
			t.Fatalf("attach receipt: %v", err)
		}
		if updated.PaymentStatus != domain.PaymentStatusPaid {
			t.Fatalf("payment status = %s", updated.PaymentStatus)
		}
		if updated.Status != domain.StatusPaymentPending {
			t.Fatal("receipt upload must not advance status; staff verifies first")
		}
	})
}

func TestAttachDocument(t *testing.T) {
	t.Parallel()

	t.Run("unknown slot", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusAdminReview)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		if _, err := svc.AttachDocument(context.Background(), app.ID, *app.UserID, "passport", "p.pdf"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Fatalf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("stores slot path", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusAdminReview)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		updated, err := svc.AttachDocument(context.Background(), app.ID, *app.UserID, "groom_id", "groom-id.pdf")
		if err != nil {
			t.Fatalf("attach document: %v", err)
		}
		if updated.GroomIDPath == nil || *updated.GroomIDPath != "groom-id.pdf" {
			t.Fatalf("groom_id slot = %v", updated.GroomIDPath)
		}
	})

	t.Run("closed application", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(domain.StatusCancelled)
		repo := newFakeApplicationRepo(app)
		svc := newEngine(repo, ApplicationDependencies{})

		if _, err := svc.AttachDocument(context.Background(), app.ID, *app.UserID, "groom_id", "p.pdf"); !apperrors.IsCode(err, "PRECONDITION_FAILED") {
			t.Fatalf("expected PRECONDITION_FAILED, got %v", err)
		}
	})
}

func TestGetStatusUsesCache(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusPaymentPending)
	repo := newFakeApplicationRepo(app)
	cache := newFakeCache()
	svc := newEngine(repo, ApplicationDependencies{Cache: cache})

	first, err := svc.GetStatus(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	second, err := svc.GetStatus(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("cached get status: %v", err)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.getCalls)
	}
	if *first != *second {
		t.Fatalf("cached view differs: %+v vs %+v", first, second)
	}
}

func TestTransitionInvalidatesStatusCache(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	repo := newFakeApplicationRepo(app)
	cache := newFakeCache()
	svc := newEngine(repo, ApplicationDependencies{Cache: cache})

	if _, err := svc.GetStatus(context.Background(), app.ID); err != nil {
		t.Fatalf("get status: %v", err)
	}
	if _, err := svc.SetDeposit(context.Background(), app.ID, 100); err != nil {
		t.Fatalf("set deposit: %v", err)
	}

	view, err := svc.GetStatus(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if view.Status != domain.StatusPaymentPending {
		t.Fatalf("stale cached status %s after transition", view.Status)
	}
}

func TestSoftDeleteHidesApplication(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	repo := newFakeApplicationRepo(app)
	svc := newEngine(repo, ApplicationDependencies{Cache: newFakeCache()})

	if err := svc.SoftDelete(context.Background(), app.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := svc.GetDetail(context.Background(), app.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND after soft delete, got %v", err)
	}
}

func TestTransitionsAreCountedInMetrics(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusAdminReview)
	repo := newFakeApplicationRepo(app)
	metrics := observability.NewMetrics()
	svc := newEngine(repo, ApplicationDependencies{Metrics: metrics})

	if _, err := svc.SetDeposit(context.Background(), app.ID, 150); err != nil {
		t.Fatalf("set deposit: %v", err)
	}
	if _, err := svc.VerifyPayment(context.Background(), app.ID, 99); err != nil {
		t.Fatalf("verify payment: %v", err)
	}

	if got := metrics.TransitionCount(string(domain.StatusAdminReview), string(domain.StatusPaymentPending)); got != 1 {
		t.Fatalf("admin_review->payment_pending counted %d times, want 1", got)
	}
	if got := metrics.TransitionCount(string(domain.StatusPaymentPending), string(domain.StatusPaymentVerified)); got != 1 {
		t.Fatalf("payment_pending->payment_verified counted %d times, want 1", got)
	}

	// Guard rejections travel no edge and count nothing.
	if _, err := svc.SetDeposit(context.Background(), app.ID, 200); !apperrors.IsCode(err, "PRECONDITION_FAILED") {
		t.Fatalf("expected PRECONDITION_FAILED on verified application, got %v", err)
	}
	if got := metrics.TransitionCount(string(domain.StatusPaymentVerified), string(domain.StatusPaymentVerified)); got != 0 {
		t.Fatalf("self edge counted %d times, want 0", got)
	}
}

func TestRepeatedDepositDoesNotCountAnEdge(t *testing.T) {
	t.Parallel()
	app := newTestApp(domain.StatusPaymentPending)
	app.DepositAmount = depositOf(100)
	repo := newFakeApplicationRepo(app)
	metrics := observability.NewMetrics()
	svc := newEngine(repo, ApplicationDependencies{Metrics: metrics})

	if _, err := svc.SetDeposit(context.Background(), app.ID, 175); err != nil {
		t.Fatalf("set deposit: %v", err)
	}
	if got := metrics.TransitionCount(string(domain.StatusPaymentPending), string(domain.StatusPaymentPending)); got != 0 {
		t.Fatalf("amount correction counted %d edges, want 0", got)
	}
}
