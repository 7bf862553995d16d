package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// ApplicationFilter captures admin search parameters.
type ApplicationFilter struct {
	Statuses        []domain.ApplicationStatus
	PaymentStatuses []domain.PaymentStatus
	SearchTerm      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	IncludeDeleted  bool
	Limit           int
	Offset          int
}

// ApplicationRepository encapsulates application persistence.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	GetByNumber(ctx context.Context, number string) (*domain.Application, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	SoftDelete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error)
}

const applicationColumns = `id, application_number, user_id, status,
        groom_name, groom_father_name, groom_birth_date, groom_birth_place, groom_address, groom_contact_number,
        bride_name, bride_father_name, bride_birth_date, bride_birth_place, bride_address,
        groom_representative, bride_representative,
        mahr_amount, mahr_type,
        solemnisation_date, solemnisation_time, solemnisation_place,
        groom_id_path, bride_id_path, groom_photo_path, bride_photo_path,
        groom_birth_cert_path, bride_birth_cert_path, groom_divorce_cert_path, bride_divorce_cert_path,
        wali_id_path, representative_auth_path,
        documents_verified, verified_by, documents_verified_at,
        deposit_amount, payment_status, payment_receipt_path, payment_verified_at,
        appointment_date, appointment_time, appointment_location,
        certificate_path, certificate_generated_at,
        is_deleted, created_at, updated_at`

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1 AND is_deleted=FALSE`
	return fetchApplication(r.pool.QueryRow(ctx, query, id))
}

func (r *applicationRepository) GetByNumber(ctx context.Context, number string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE application_number=$1 AND is_deleted=FALSE`
	return fetchApplication(r.pool.QueryRow(ctx, query, number))
}

func (r *applicationRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id=$1 AND is_deleted=FALSE
        ORDER BY created_at DESC LIMIT 1`
	return fetchApplication(r.pool.QueryRow(ctx, query, userID))
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	const query = `
        UPDATE applications SET
            status=$1,
            groom_id_path=$2, bride_id_path=$3, groom_photo_path=$4, bride_photo_path=$5,
            groom_birth_cert_path=$6, bride_birth_cert_path=$7, groom_divorce_cert_path=$8,
            bride_divorce_cert_path=$9, wali_id_path=$10, representative_auth_path=$11,
            documents_verified=$12, verified_by=$13, documents_verified_at=$14,
            deposit_amount=$15, payment_status=$16, payment_receipt_path=$17, payment_verified_at=$18,
            appointment_date=$19, appointment_time=$20, appointment_location=$21,
            certificate_path=$22, certificate_generated_at=$23,
            updated_at=NOW()
        WHERE id=$24 AND is_deleted=FALSE`

	cmd, err := r.pool.Exec(ctx, query,
		app.Status,
		app.GroomIDPath, app.BrideIDPath, app.GroomPhotoPath, app.BridePhotoPath,
		app.GroomBirthCertPath, app.BrideBirthCertPath, app.GroomDivorceCertPath,
		app.BrideDivorceCertPath, app.WaliIDPath, app.RepresentativeAuthPath,
		app.DocumentsVerified, app.VerifiedBy, app.DocumentsVerifiedAt,
		app.DepositAmount, app.PaymentStatus, app.PaymentReceiptPath, app.PaymentVerifiedAt,
		app.AppointmentDate, app.AppointmentTime, app.AppointmentLocation,
		app.CertificatePath, app.CertificateGeneratedAt,
		app.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE applications SET is_deleted=TRUE, updated_at=NOW() WHERE id=$1 AND is_deleted=FALSE`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) ListWithFilter(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeDeleted {
		clauses = append(clauses, "is_deleted=FALSE")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.PaymentStatuses) > 0 {
		placeholders := make([]string, len(filter.PaymentStatuses))
		for i, ps := range filter.PaymentStatuses {
			args = append(args, ps)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("payment_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(groom_name) LIKE %s OR LOWER(bride_name) LIKE %s OR LOWER(application_number) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM applications WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		applicationColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Application
	for rows.Next() {
		app, err := fetchApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func fetchApplication(row rowScanner) (*domain.Application, error) {
	var app domain.Application
	if err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.UserID, &app.Status,
		&app.GroomName, &app.GroomFatherName, &app.GroomBirthDate, &app.GroomBirthPlace, &app.GroomAddress, &app.GroomContactNumber,
		&app.BrideName, &app.BrideFatherName, &app.BrideBirthDate, &app.BrideBirthPlace, &app.BrideAddress,
		&app.GroomRepresentative, &app.BrideRepresentative,
		&app.MahrAmount, &app.MahrType,
		&app.SolemnisationDate, &app.SolemnisationTime, &app.SolemnisationPlace,
		&app.GroomIDPath, &app.BrideIDPath, &app.GroomPhotoPath, &app.BridePhotoPath,
		&app.GroomBirthCertPath, &app.BrideBirthCertPath, &app.GroomDivorceCertPath, &app.BrideDivorceCertPath,
		&app.WaliIDPath, &app.RepresentativeAuthPath,
		&app.DocumentsVerified, &app.VerifiedBy, &app.DocumentsVerifiedAt,
		&app.DepositAmount, &app.PaymentStatus, &app.PaymentReceiptPath, &app.PaymentVerifiedAt,
		&app.AppointmentDate, &app.AppointmentTime, &app.AppointmentLocation,
		&app.CertificatePath, &app.CertificateGeneratedAt,
		&app.IsDeleted, &app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
