package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/domain"
)

// AccountRepository defines persistence access for accounts and their staff groups.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	SetGroups(ctx context.Context, accountID string, groups []domain.StaffGroup) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
}

// AccountFilter defines query params for account listing.
type AccountFilter struct {
	Type   *domain.AccountType
	Status *domain.VerificationStatus
	Group  *domain.StaffGroup
	Limit  int
	Offset int
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `
        a.id, a.email, a.name, a.password_hash, a.account_type, a.verification_status,
        COALESCE(array_agg(g.group_name) FILTER (WHERE g.group_name IS NOT NULL), '{}'),
        a.created_at, a.updated_at`

const accountFrom = `
        FROM accounts a LEFT JOIN account_groups g ON g.account_id = a.id`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, name, password_hash, account_type, verification_status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	q := conn(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		account.Email,
		account.Name,
		account.PasswordHash,
		account.Type,
		account.VerificationStatus,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if len(account.Groups) == 0 {
		return nil
	}
	return r.SetGroups(ctx, account.ID, account.Groups)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET email=$1, name=$2, password_hash=$3, account_type=$4,
            verification_status=$5, updated_at=NOW()
        WHERE id=$6`

	err := execAffectingOne(ctx, conn(ctx, r.pool), query,
		account.Email,
		account.Name,
		account.PasswordHash,
		account.Type,
		account.VerificationStatus,
		account.ID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *accountRepository) SetGroups(ctx context.Context, accountID string, groups []domain.StaffGroup) error {
	q := conn(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM account_groups WHERE account_id=$1`, accountID); err != nil {
		return err
	}
	names := lo.Uniq(lo.Map(groups, func(g domain.StaffGroup, _ int) string { return string(g) }))
	if len(names) == 0 {
		return nil
	}
	const query = `
        INSERT INTO account_groups (account_id, group_name)
        SELECT $1, unnest($2::text[])`
	_, err := q.Exec(ctx, query, accountID, names)
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + accountFrom + ` WHERE a.id=$1 GROUP BY a.id`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + accountFrom + ` WHERE LOWER(a.email)=LOWER($1) GROUP BY a.id`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account, err := scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("a.account_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("a.verification_status=$%d", len(args)))
	}
	if filter.Group != nil {
		args = append(args, *filter.Group)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM account_groups ag WHERE ag.account_id=a.id AND ag.group_name=$%d)", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s GROUP BY a.id ORDER BY a.created_at DESC LIMIT %d OFFSET %d`,
		accountColumns, accountFrom, strings.Join(clauses, " AND "), limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		groups  []string
	)
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PasswordHash,
		&account.Type,
		&account.VerificationStatus,
		&groups,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Groups = lo.Map(groups, func(g string, _ int) domain.StaffGroup { return domain.StaffGroup(g) })
	return &account, nil
}
