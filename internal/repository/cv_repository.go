package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// CVRepository stores CV document references.
type CVRepository interface {
	Create(ctx context.Context, cv *domain.CV) error
	GetByID(ctx context.Context, id string) (*domain.CV, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CV, error)
	Delete(ctx context.Context, id string) error
}

type cvRepository struct {
	pool *pgxpool.Pool
}

// NewCVRepository constructs repository.
func NewCVRepository(pool *pgxpool.Pool) CVRepository {
	return &cvRepository{pool: pool}
}

func (r *cvRepository) Create(ctx context.Context, cv *domain.CV) error {
	const query = `
        INSERT INTO cvs (user_id, name, document_url)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query, cv.UserID, cv.Name, cv.DocumentURL).Scan(&cv.ID, &cv.CreatedAt)
}

func (r *cvRepository) GetByID(ctx context.Context, id string) (*domain.CV, error) {
	const query = `SELECT id, user_id, name, document_url, created_at FROM cvs WHERE id=$1`
	var cv domain.CV
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&cv.ID,
		&cv.UserID,
		&cv.Name,
		&cv.DocumentURL,
		&cv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *cvRepository) ListByUser(ctx context.Context, userID string) ([]domain.CV, error) {
	const query = `
        SELECT id, user_id, name, document_url, created_at
        FROM cvs WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CV
	for rows.Next() {
		var cv domain.CV
		if err := rows.Scan(&cv.ID, &cv.UserID, &cv.Name, &cv.DocumentURL, &cv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cv)
	}
	return result, rows.Err()
}

func (r *cvRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, conn(ctx, r.pool), `DELETE FROM cvs WHERE id=$1`, id)
}
