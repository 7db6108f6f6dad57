package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/repository"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

// RegistrationDeps are the collaborators a registration variant may use.
type RegistrationDeps struct {
	Accounts   repository.AccountRepository
	Profiles   repository.EmployerProfileRepository
	Dispatcher events.Dispatcher
	BcryptCost int
}

// AccountRegistration is implemented by each kind of account sign-up. Persist runs inside
// a transaction; PostProcess runs after it commits and must not fail the registration.
type AccountRegistration interface {
	Validate() error
	Persist(ctx context.Context, deps RegistrationDeps) (*domain.Account, error)
	PostProcess(ctx context.Context, deps RegistrationDeps, account *domain.Account)
}

// StandardRegistration signs up a regular user.
type StandardRegistration struct {
	Email    string `validate:"required,email,max=254"`
	Name     string `validate:"required,max=120"`
	Password string `validate:"required,min=8,max=72"`
}

// EmployerRegistration signs up an employer together with the company profile.
type EmployerRegistration struct {
	Email       string `validate:"required,email,max=254"`
	Name        string `validate:"required,max=120"`
	Password    string `validate:"required,min=8,max=72"`
	CompanyName string `validate:"required,max=200"`
	Phone       string `validate:"omitempty,max=32"`
}

// StaffRegistration creates a staff account on behalf of an account verifier.
type StaffRegistration struct {
	Email    string              `validate:"required,email,max=254"`
	Name     string              `validate:"required,max=120"`
	Password string              `validate:"required,min=8,max=72"`
	Groups   []domain.StaffGroup `validate:"required,min=1"`
}

func (r StandardRegistration) Validate() error {
	return apperrors.ValidateStruct(r)
}

func (r StandardRegistration) Persist(ctx context.Context, deps RegistrationDeps) (*domain.Account, error) {
	return createAccount(ctx, deps, r.Email, r.Name, r.Password, domain.AccountTypeStandard, domain.VerificationWaiting)
}

func (r StandardRegistration) PostProcess(ctx context.Context, deps RegistrationDeps, account *domain.Account) {
	publishRegistered(ctx, deps, account)
}

func (r EmployerRegistration) Validate() error {
	return apperrors.ValidateStruct(r)
}

// Persist creates the account as an employer and stores the company profile with it.
func (r EmployerRegistration) Persist(ctx context.Context, deps RegistrationDeps) (*domain.Account, error) {
	account, err := createAccount(ctx, deps, r.Email, r.Name, r.Password, domain.AccountTypeEmployer, domain.VerificationWaiting)
	if err != nil {
		return nil, err
	}
	profile := &domain.EmployerProfile{
		AccountID:   account.ID,
		CompanyName: strings.TrimSpace(r.CompanyName),
		Phone:       strings.TrimSpace(r.Phone),
	}
	if err := deps.Profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("employer profile already exists", nil)
		}
		return nil, err
	}
	return account, nil
}

func (r EmployerRegistration) PostProcess(ctx context.Context, deps RegistrationDeps, account *domain.Account) {
	publishRegistered(ctx, deps, account)
}

func (r StaffRegistration) Validate() error {
	if err := apperrors.ValidateStruct(r); err != nil {
		return err
	}
	invalid := lo.Filter(r.Groups, func(g domain.StaffGroup, _ int) bool { return !g.Valid() })
	if len(invalid) > 0 {
		return apperrors.NewValidationError("unknown staff group", map[string]any{"groups": invalid})
	}
	return nil
}

// Persist creates a verified staff account holding the requested groups.
func (r StaffRegistration) Persist(ctx context.Context, deps RegistrationDeps) (*domain.Account, error) {
	account, err := createAccount(ctx, deps, r.Email, r.Name, r.Password, domain.AccountTypeStaff, domain.VerificationVerified)
	if err != nil {
		return nil, err
	}
	groups := lo.Uniq(r.Groups)
	if err := deps.Accounts.SetGroups(ctx, account.ID, groups); err != nil {
		return nil, err
	}
	account.Groups = groups
	return account, nil
}

func (r StaffRegistration) PostProcess(ctx context.Context, deps RegistrationDeps, account *domain.Account) {
	publishRegistered(ctx, deps, account)
}

func createAccount(ctx context.Context, deps RegistrationDeps, email, name, password string, accountType domain.AccountType, status domain.VerificationStatus) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := deps.Accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, deps.BcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Email:              email,
		Name:               strings.TrimSpace(name),
		PasswordHash:       hash,
		Type:               accountType,
		VerificationStatus: status,
	}
	if err := deps.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, err
	}
	return account, nil
}

func publishRegistered(ctx context.Context, deps RegistrationDeps, account *domain.Account) {
	publishEvent(ctx, deps.Dispatcher, events.Event{
		Type:      events.EventAccountRegistered,
		SubjectID: account.ID,
		Actor:     events.ActorOf(account),
		Payload: events.AccountRegisteredPayload{
			Email: account.Email,
			Name:  account.Name,
			Type:  account.Type,
		},
	})
}
