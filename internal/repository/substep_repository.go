package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// SubStepRepository manages ordered substeps.
type SubStepRepository interface {
	Create(ctx context.Context, sub *domain.SubStep) error
	Update(ctx context.Context, sub *domain.SubStep) error
	GetByID(ctx context.Context, id string) (*domain.SubStep, error)
	List(ctx context.Context) ([]domain.SubStep, error)
	// ListByStep returns the substeps of a step ordered by position.
	ListByStep(ctx context.Context, stepID string) ([]domain.SubStep, error)
	// MaxOrder reports the highest order under stepID; ok is false when the step has none.
	MaxOrder(ctx context.Context, stepID string) (highest int, ok bool, err error)
	SetOrder(ctx context.Context, id string, order int) error
	Delete(ctx context.Context, id string) error
	DeleteByStep(ctx context.Context, stepID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type subStepRepository struct {
	pool *pgxpool.Pool
}

// NewSubStepRepository builds the repository.
func NewSubStepRepository(pool *pgxpool.Pool) SubStepRepository {
	return &subStepRepository{pool: pool}
}

const subStepColumns = `id, step_id, title, description, video, sort_order, created_at, updated_at`

func (r *subStepRepository) Create(ctx context.Context, sub *domain.SubStep) error {
	const query = `
        INSERT INTO substeps (step_id, title, description, video, sort_order)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		sub.StepID,
		sub.Title,
		sub.Description,
		sub.Video,
		sub.Order,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *subStepRepository) Update(ctx context.Context, sub *domain.SubStep) error {
	const query = `
        UPDATE substeps SET title=$1, description=$2, video=$3, updated_at=NOW()
        WHERE id=$4`
	return execAffectingOne(ctx, conn(ctx, r.pool), query,
		sub.Title,
		sub.Description,
		sub.Video,
		sub.ID,
	)
}

func (r *subStepRepository) GetByID(ctx context.Context, id string) (*domain.SubStep, error) {
	query := `SELECT ` + subStepColumns + ` FROM substeps WHERE id=$1`
	return scanSubStep(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *subStepRepository) List(ctx context.Context) ([]domain.SubStep, error) {
	query := `SELECT ` + subStepColumns + ` FROM substeps ORDER BY step_id, sort_order, created_at, id`
	return r.list(ctx, query)
}

func (r *subStepRepository) ListByStep(ctx context.Context, stepID string) ([]domain.SubStep, error) {
	query := `SELECT ` + subStepColumns + ` FROM substeps WHERE step_id=$1 ORDER BY sort_order, created_at, id`
	return r.list(ctx, query, stepID)
}

func (r *subStepRepository) list(ctx context.Context, query string, args ...any) ([]domain.SubStep, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubStep
	for rows.Next() {
		sub, err := scanSubStep(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	return result, rows.Err()
}

func (r *subStepRepository) MaxOrder(ctx context.Context, stepID string) (int, bool, error) {
	var highest *int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT MAX(sort_order) FROM substeps WHERE step_id=$1`, stepID).Scan(&highest); err != nil {
		return 0, false, err
	}
	if highest == nil {
		return 0, false, nil
	}
	return *highest, true, nil
}

func (r *subStepRepository) SetOrder(ctx context.Context, id string, order int) error {
	const query = `UPDATE substeps SET sort_order=$1, updated_at=NOW() WHERE id=$2`
	return execAffectingOne(ctx, conn(ctx, r.pool), query, order, id)
}

func (r *subStepRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, conn(ctx, r.pool), `DELETE FROM substeps WHERE id=$1`, id)
}

func (r *subStepRepository) DeleteByStep(ctx context.Context, stepID string) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM substeps WHERE step_id=$1`, stepID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *subStepRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM substeps`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanSubStep(row pgx.Row) (*domain.SubStep, error) {
	var sub domain.SubStep
	if err := row.Scan(
		&sub.ID,
		&sub.StepID,
		&sub.Title,
		&sub.Description,
		&sub.Video,
		&sub.Order,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}
