package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
)

// Accounts returns an in-memory AccountRepository.
func (s *Store) Accounts() repository.AccountRepository { return accountStore{s} }

// EmployerProfiles returns an in-memory EmployerProfileRepository.
func (s *Store) EmployerProfiles() repository.EmployerProfileRepository { return profileStore{s} }

type accountStore struct{ s *Store }

func cloneAccount(a domain.Account) *domain.Account {
	a.Groups = append([]domain.StaffGroup(nil), a.Groups...)
	return &a
}

func (r accountStore) Create(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return repository.ErrDuplicate
		}
	}
	account.ID = newID()
	account.CreatedAt = r.s.tick()
	account.UpdatedAt = account.CreatedAt
	r.s.accounts[account.ID] = *cloneAccount(*account)
	return nil
}

func (r accountStore) Update(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.accounts[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := *cloneAccount(*account)
	updated.Groups = current.Groups
	updated.UpdatedAt = r.s.tick()
	r.s.accounts[account.ID] = updated
	return nil
}

func (r accountStore) SetGroups(_ context.Context, accountID string, groups []domain.StaffGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	current.Groups = append([]domain.StaffGroup(nil), groups...)
	r.s.accounts[accountID] = current
	return nil
}

func (r accountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneAccount(a), nil
}

func (r accountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return cloneAccount(a), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r accountStore) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Account
	for _, a := range r.s.accounts {
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && a.VerificationStatus != *filter.Status {
			continue
		}
		if filter.Group != nil && !a.HasGroup(*filter.Group) {
			continue
		}
		result = append(result, *cloneAccount(a))
	}
	sortByCreated(result, func(a domain.Account) time.Time { return a.CreatedAt })
	return paginate(result, filter.Limit, filter.Offset, 50), nil
}

type profileStore struct{ s *Store }

func (r profileStore) Create(_ context.Context, profile *domain.EmployerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.profiles[profile.AccountID]; exists {
		return repository.ErrDuplicate
	}
	profile.CreatedAt = r.s.tick()
	r.s.profiles[profile.AccountID] = *profile
	return nil
}

func (r profileStore) GetByAccountID(_ context.Context, accountID string) (*domain.EmployerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[accountID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func paginate[T any](items []T, limit, offset, defaultLimit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
