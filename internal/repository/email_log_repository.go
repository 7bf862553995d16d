package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// EmailLogRepository records outbound email attempts for auditing.
type EmailLogRepository interface {
	Create(ctx context.Context, log *domain.EmailLog) error
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.EmailLog, error)
}

type emailLogRepository struct {
	pool *pgxpool.Pool
}

// NewEmailLogRepository instantiates repository.
func NewEmailLogRepository(pool *pgxpool.Pool) EmailLogRepository {
	return &emailLogRepository{pool: pool}
}

func (r *emailLogRepository) Create(ctx context.Context, log *domain.EmailLog) error {
	const query = `
        INSERT INTO email_logs (application_id, type, recipient, subject, status, error)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		log.ApplicationID,
		log.Type,
		log.Recipient,
		log.Subject,
		log.Status,
		log.Error,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *emailLogRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.EmailLog, error) {
	const query = `
        SELECT id, application_id, type, recipient, subject, status, error, created_at
        FROM email_logs WHERE application_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EmailLog
	for rows.Next() {
		var log domain.EmailLog
		if err := rows.Scan(
			&log.ID,
			&log.ApplicationID,
			&log.Type,
			&log.Recipient,
			&log.Subject,
			&log.Status,
			&log.Error,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
