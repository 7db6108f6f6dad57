package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/social-services/internal/domain"
)

// EmployerProfileRepository manages company data of employer accounts.
type EmployerProfileRepository interface {
	Create(ctx context.Context, profile *domain.EmployerProfile) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.EmployerProfile, error)
}

type employerProfileRepository struct {
	pool *pgxpool.Pool
}

// NewEmployerProfileRepository constructs repository.
func NewEmployerProfileRepository(pool *pgxpool.Pool) EmployerProfileRepository {
	return &employerProfileRepository{pool: pool}
}

func (r *employerProfileRepository) Create(ctx context.Context, profile *domain.EmployerProfile) error {
	const query = `
        INSERT INTO employer_profiles (account_id, company_name, phone)
        VALUES ($1,$2,$3)
        RETURNING created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, profile.AccountID, profile.CompanyName, profile.Phone).Scan(&profile.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *employerProfileRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.EmployerProfile, error) {
	const query = `SELECT account_id, company_name, phone, created_at FROM employer_profiles WHERE account_id=$1`
	var profile domain.EmployerProfile
	if err := conn(ctx, r.pool).QueryRow(ctx, query, accountID).Scan(
		&profile.AccountID,
		&profile.CompanyName,
		&profile.Phone,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
