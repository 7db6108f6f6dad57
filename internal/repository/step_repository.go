package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// StepRepository manages onboarding step persistence.
type StepRepository interface {
	Create(ctx context.Context, step *domain.Step) error
	Update(ctx context.Context, step *domain.Step) error
	GetByID(ctx context.Context, id string) (*domain.Step, error)
	GetRoot(ctx context.Context) (*domain.Step, error)
	List(ctx context.Context) ([]domain.Step, error)
	ListChildren(ctx context.Context, parentID string) ([]domain.Step, error)
	// Reparent moves every direct child of fromParentID under toParentID.
	Reparent(ctx context.Context, fromParentID, toParentID string) (int64, error)
	// LockForUpdate takes a row lock on the step for the rest of the transaction.
	LockForUpdate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteAllExcept(ctx context.Context, keepID string) (int64, error)
}

type stepRepository struct {
	pool *pgxpool.Pool
}

// NewStepRepository builds the repository.
func NewStepRepository(pool *pgxpool.Pool) StepRepository {
	return &stepRepository{pool: pool}
}

const stepColumns = `id, title, description, parent_id, video, created_at, updated_at`

func (r *stepRepository) Create(ctx context.Context, step *domain.Step) error {
	const query = `
        INSERT INTO steps (title, description, parent_id, video)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		step.Title,
		step.Description,
		step.ParentID,
		step.Video,
	).Scan(&step.ID, &step.CreatedAt, &step.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *stepRepository) Update(ctx context.Context, step *domain.Step) error {
	const query = `
        UPDATE steps SET title=$1, description=$2, parent_id=$3, video=$4, updated_at=NOW()
        WHERE id=$5`
	return execAffectingOne(ctx, conn(ctx, r.pool), query,
		step.Title,
		step.Description,
		step.ParentID,
		step.Video,
		step.ID,
	)
}

func (r *stepRepository) GetByID(ctx context.Context, id string) (*domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE id=$1`
	return scanStep(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *stepRepository) GetRoot(ctx context.Context) (*domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE parent_id IS NULL ORDER BY created_at LIMIT 1`
	return scanStep(conn(ctx, r.pool).QueryRow(ctx, query))
}

func (r *stepRepository) List(ctx context.Context) ([]domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *stepRepository) ListChildren(ctx context.Context, parentID string) ([]domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE parent_id=$1 ORDER BY created_at, id`
	return r.list(ctx, query, parentID)
}

func (r *stepRepository) list(ctx context.Context, query string, args ...any) ([]domain.Step, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Step
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *step)
	}
	return result, rows.Err()
}

func (r *stepRepository) Reparent(ctx context.Context, fromParentID, toParentID string) (int64, error) {
	const query = `UPDATE steps SET parent_id=$1, updated_at=NOW() WHERE parent_id=$2`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, toParentID, fromParentID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *stepRepository) LockForUpdate(ctx context.Context, id string) error {
	var locked string
	return conn(ctx, r.pool).QueryRow(ctx, `SELECT id FROM steps WHERE id=$1 FOR UPDATE`, id).Scan(&locked)
}

func (r *stepRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, conn(ctx, r.pool), `DELETE FROM steps WHERE id=$1`, id)
}

func (r *stepRepository) DeleteAllExcept(ctx context.Context, keepID string) (int64, error) {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM steps WHERE id<>$1`, keepID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanStep(row pgx.Row) (*domain.Step, error) {
	var step domain.Step
	if err := row.Scan(
		&step.ID,
		&step.Title,
		&step.Description,
		&step.ParentID,
		&step.Video,
		&step.CreatedAt,
		&step.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &step, nil
}
