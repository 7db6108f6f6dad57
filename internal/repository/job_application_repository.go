package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// JobApplicationRepository stores applications to job offers.
type JobApplicationRepository interface {
	// Create returns ErrDuplicate when the user already applied to the offer.
	Create(ctx context.Context, app *domain.JobOfferApplication) error
	Exists(ctx context.Context, offerID, userID string) (bool, error)
	ListByOffer(ctx context.Context, offerID string) ([]domain.JobOfferApplication, error)
	ListByUser(ctx context.Context, userID string) ([]domain.JobOfferApplication, error)
}

type jobApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewJobApplicationRepository constructs repository.
func NewJobApplicationRepository(pool *pgxpool.Pool) JobApplicationRepository {
	return &jobApplicationRepository{pool: pool}
}

func (r *jobApplicationRepository) Create(ctx context.Context, app *domain.JobOfferApplication) error {
	const query = `
        INSERT INTO job_offer_applications (offer_id, user_id, cv_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, app.OfferID, app.UserID, app.CVID).Scan(&app.ID, &app.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *jobApplicationRepository) Exists(ctx context.Context, offerID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM job_offer_applications WHERE offer_id=$1 AND user_id=$2)`
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, query, offerID, userID).Scan(&exists)
	return exists, err
}

func (r *jobApplicationRepository) ListByOffer(ctx context.Context, offerID string) ([]domain.JobOfferApplication, error) {
	const query = `
        SELECT id, offer_id, user_id, cv_id, created_at
        FROM job_offer_applications WHERE offer_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, offerID)
}

func (r *jobApplicationRepository) ListByUser(ctx context.Context, userID string) ([]domain.JobOfferApplication, error) {
	const query = `
        SELECT id, offer_id, user_id, cv_id, created_at
        FROM job_offer_applications WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *jobApplicationRepository) list(ctx context.Context, query string, arg any) ([]domain.JobOfferApplication, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobOfferApplication
	for rows.Next() {
		var app domain.JobOfferApplication
		if err := rows.Scan(&app.ID, &app.OfferID, &app.UserID, &app.CVID, &app.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}
