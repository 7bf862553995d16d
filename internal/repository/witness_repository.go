package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nikah-service/internal/domain"
)

// WitnessRepository reads witnesses of an application. Witness rows are only
// ever written inside the submission transaction; they have no independent
// lifecycle.
type WitnessRepository interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.Witness, error)
}

type witnessRepository struct {
	pool *pgxpool.Pool
}

// NewWitnessRepository instantiates repository.
func NewWitnessRepository(pool *pgxpool.Pool) WitnessRepository {
	return &witnessRepository{pool: pool}
}

func (r *witnessRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Witness, error) {
	const query = `
        SELECT id, application_id, name, father_name, birth_date, birth_place, address, witness_order, created_at
        FROM witnesses WHERE application_id=$1
        ORDER BY witness_order ASC`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Witness
	for rows.Next() {
		var w domain.Witness
		if err := rows.Scan(
			&w.ID,
			&w.ApplicationID,
			&w.Name,
			&w.FatherName,
			&w.BirthDate,
			&w.BirthPlace,
			&w.Address,
			&w.WitnessOrder,
			&w.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
