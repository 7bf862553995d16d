package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nikah-service/internal/domain"
	apperrors "github.com/spec-kit/nikah-service/pkg/util/errorutil"
)

// SubmissionRepository owns the atomic multi-row write performed at form
// submission: one user, one application, zero or more witnesses, committed
// together or not at all.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, user *domain.User, app *domain.Application, witnesses []domain.Witness) error
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

// CreateSubmission holds one pooled connection for the whole transaction:
// duplicate-email check, user insert, application insert, witness inserts,
// commit. Any failure rolls back fully; no partial rows are observable.
// Unique violations are classified so callers can distinguish an email
// duplicate (abort) from an application-number collision (regenerate and
// retry).
func (r *submissionRepository) CreateSubmission(ctx context.Context, user *domain.User, app *domain.Application, witnesses []domain.Witness) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Pre-check duplicate email inside the transaction. The unique index on
	// LOWER(email) remains the final authority under concurrent submissions.
	var existingID int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE LOWER(email)=LOWER($1)`, user.Email).Scan(&existingID)
	if err == nil {
		return apperrors.NewDuplicateKey("email")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ClassifyPgError(err, "email")
	}

	if err := tx.QueryRow(ctx, `
        INSERT INTO users (full_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`,
		user.FullName, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return apperrors.ClassifyPgError(err, "email")
	}

	app.UserID = &user.ID
	if err := tx.QueryRow(ctx, `
        INSERT INTO applications (
            application_number, user_id, status,
            groom_name, groom_father_name, groom_birth_date, groom_birth_place, groom_address, groom_contact_number,
            bride_name, bride_father_name, bride_birth_date, bride_birth_place, bride_address,
            groom_representative, bride_representative,
            mahr_amount, mahr_type,
            solemnisation_date, solemnisation_time, solemnisation_place,
            groom_id_path, bride_id_path, groom_photo_path, bride_photo_path,
            groom_birth_cert_path, bride_birth_cert_path, groom_divorce_cert_path, bride_divorce_cert_path,
            wali_id_path, representative_auth_path,
            payment_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,
                $22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)
        RETURNING id, created_at, updated_at`,
		app.ApplicationNumber, app.UserID, app.Status,
		app.GroomName, app.GroomFatherName, app.GroomBirthDate, app.GroomBirthPlace, app.GroomAddress, app.GroomContactNumber,
		app.BrideName, app.BrideFatherName, app.BrideBirthDate, app.BrideBirthPlace, app.BrideAddress,
		app.GroomRepresentative, app.BrideRepresentative,
		app.MahrAmount, app.MahrType,
		app.SolemnisationDate, app.SolemnisationTime, app.SolemnisationPlace,
		app.GroomIDPath, app.BrideIDPath, app.GroomPhotoPath, app.BridePhotoPath,
		app.GroomBirthCertPath, app.BrideBirthCertPath, app.GroomDivorceCertPath, app.BrideDivorceCertPath,
		app.WaliIDPath, app.RepresentativeAuthPath,
		app.PaymentStatus,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return apperrors.ClassifyPgError(err, "application_number")
	}

	for i := range witnesses {
		w := &witnesses[i]
		w.ApplicationID = app.ID
		if err := tx.QueryRow(ctx, `
            INSERT INTO witnesses (application_id, name, father_name, birth_date, birth_place, address, witness_order)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING id, created_at`,
			w.ApplicationID, w.Name, w.FatherName, w.BirthDate, w.BirthPlace, w.Address, w.WitnessOrder,
		).Scan(&w.ID, &w.CreatedAt); err != nil {
			return apperrors.ClassifyPgError(err, "witness_order")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
