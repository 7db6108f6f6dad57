package testutil

import (
	"fmt"

	"github.com/spec-kit/social-services/internal/domain"
)

// AddAccount seeds an account directly into the store and returns it.
func (s *Store) AddAccount(accountType domain.AccountType, status domain.VerificationStatus, groups ...domain.StaffGroup) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	account := domain.Account{
		ID:                 id,
		Email:              fmt.Sprintf("%s@example.com", id[:8]),
		Name:               string(accountType) + " " + id[:4],
		Type:               accountType,
		VerificationStatus: status,
		Groups:             append([]domain.StaffGroup(nil), groups...),
	}
	account.CreatedAt = s.tick()
	account.UpdatedAt = account.CreatedAt
	s.accounts[id] = account
	return account
}

// Staff seeds a verified staff account holding groups.
func (s *Store) Staff(groups ...domain.StaffGroup) domain.Account {
	return s.AddAccount(domain.AccountTypeStaff, domain.VerificationVerified, groups...)
}

// Employer seeds a verified employer account.
func (s *Store) Employer() domain.Account {
	return s.AddAccount(domain.AccountTypeEmployer, domain.VerificationVerified)
}

// Standard seeds a verified standard account.
func (s *Store) Standard() domain.Account {
	return s.AddAccount(domain.AccountTypeStandard, domain.VerificationVerified)
}
