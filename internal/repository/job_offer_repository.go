package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// JobOfferFilter captures listing parameters. Removed offers are excluded unless
// IncludeRemoved is set.
type JobOfferFilter struct {
	EmployerID     *string
	Confirmed      *bool
	IncludeRemoved bool
	ConfirmedSince *time.Time
	SearchTerm     *string
	Limit          int
	Offset         int
}

// JobOfferRepository encapsulates job offer persistence.
type JobOfferRepository interface {
	Create(ctx context.Context, offer *domain.JobOffer) error
	Update(ctx context.Context, offer *domain.JobOffer) error
	GetByID(ctx context.Context, id string) (*domain.JobOffer, error)
	List(ctx context.Context, filter JobOfferFilter) ([]domain.JobOffer, error)
}

type jobOfferRepository struct {
	pool *pgxpool.Pool
}

// NewJobOfferRepository instantiates repository.
func NewJobOfferRepository(pool *pgxpool.Pool) JobOfferRepository {
	return &jobOfferRepository{pool: pool}
}

const jobOfferColumns = `id, employer_id, title, description, location, salary_min, salary_max,
               confirmed, removed, confirmed_at, created_at, updated_at`

func (r *jobOfferRepository) Create(ctx context.Context, offer *domain.JobOffer) error {
	const query = `
        INSERT INTO job_offers (employer_id, title, description, location, salary_min, salary_max, confirmed, removed, confirmed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		offer.EmployerID,
		offer.Title,
		offer.Description,
		offer.Location,
		offer.SalaryMin,
		offer.SalaryMax,
		offer.Confirmed,
		offer.Removed,
		offer.ConfirmedAt,
	).Scan(&offer.ID, &offer.CreatedAt, &offer.UpdatedAt)
}

func (r *jobOfferRepository) Update(ctx context.Context, offer *domain.JobOffer) error {
	const query = `
        UPDATE job_offers SET title=$1, description=$2, location=$3, salary_min=$4, salary_max=$5,
            confirmed=$6, removed=$7, confirmed_at=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		offer.Title,
		offer.Description,
		offer.Location,
		offer.SalaryMin,
		offer.SalaryMax,
		offer.Confirmed,
		offer.Removed,
		offer.ConfirmedAt,
		offer.ID,
	).Scan(&offer.UpdatedAt)
}

func (r *jobOfferRepository) GetByID(ctx context.Context, id string) (*domain.JobOffer, error) {
	query := `SELECT ` + jobOfferColumns + ` FROM job_offers WHERE id=$1`
	return scanJobOffer(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *jobOfferRepository) List(ctx context.Context, filter JobOfferFilter) ([]domain.JobOffer, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeRemoved {
		clauses = append(clauses, "removed=FALSE")
	}
	if filter.EmployerID != nil {
		args = append(args, *filter.EmployerID)
		clauses = append(clauses, fmt.Sprintf("employer_id=$%d", len(args)))
	}
	if filter.Confirmed != nil {
		args = append(args, *filter.Confirmed)
		clauses = append(clauses, fmt.Sprintf("confirmed=$%d", len(args)))
	}
	if filter.ConfirmedSince != nil {
		args = append(args, *filter.ConfirmedSince)
		clauses = append(clauses, fmt.Sprintf("confirmed_at>$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM job_offers WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		jobOfferColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobOffer
	for rows.Next() {
		offer, err := scanJobOffer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *offer)
	}
	return result, rows.Err()
}

func scanJobOffer(row pgx.Row) (*domain.JobOffer, error) {
	var offer domain.JobOffer
	if err := row.Scan(
		&offer.ID,
		&offer.EmployerID,
		&offer.Title,
		&offer.Description,
		&offer.Location,
		&offer.SalaryMin,
		&offer.SalaryMax,
		&offer.Confirmed,
		&offer.Removed,
		&offer.ConfirmedAt,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &offer, nil
}
