package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/config"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/repository"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

// AccountService coordinates registration, login and account moderation.
type AccountService struct {
	accounts repository.AccountRepository
	tx       repository.Transactor
	tokens   *auth.TokenManager
	deps     RegistrationDeps
	logger   *zap.Logger
}

// AccountDependencies encapsulates repo requirements for the account service.
type AccountDependencies struct {
	AccountRepo  repository.AccountRepository
	ProfileRepo  repository.EmployerProfileRepository
	Transactor   repository.Transactor
	Dispatcher   events.Dispatcher
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// Session is the result of a successful login.
type Session struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts: deps.AccountRepo,
		tx:       deps.Transactor,
		tokens:   tokens,
		logger:   logger,
		deps: RegistrationDeps{
			Accounts:   deps.AccountRepo,
			Profiles:   deps.ProfileRepo,
			Dispatcher: deps.Dispatcher,
			BcryptCost: cfg.Auth.BcryptCost,
		},
	}
}

// Register runs a registration variant end to end.
func (s *AccountService) Register(ctx context.Context, reg AccountRegistration) (*domain.Account, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	var account *domain.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = reg.Persist(ctx, s.deps)
		return err
	})
	if err != nil {
		return nil, err
	}
	reg.PostProcess(ctx, s.deps, account)
	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("type", string(account.Type)))
	return account, nil
}

// CreateStaff registers a staff account on behalf of an account verifier.
func (s *AccountService) CreateStaff(ctx context.Context, actor *domain.Account, reg StaffRegistration) (*domain.Account, error) {
	if !auth.IsAllowed(actor, auth.ActionVerifyAccounts, nil) {
		return nil, auth.Forbidden()
	}
	return s.Register(ctx, reg)
}

// Login checks credentials and issues an access token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if account.VerificationStatus == domain.VerificationBlocked {
		return nil, apperrors.NewForbidden("account is blocked")
	}
	token, exp, err := s.tokens.GenerateToken(account)
	if err != nil {
		return nil, err
	}
	return &Session{Account: account, Token: token, ExpiresAt: exp}, nil
}

// Me reloads the calling account.
func (s *AccountService) Me(ctx context.Context, actor *domain.Account) (*domain.Account, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	account, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "account", actor.ID)
	}
	return account, nil
}

// SetVerificationStatus moves an account between verification states.
func (s *AccountService) SetVerificationStatus(ctx context.Context, actor *domain.Account, accountID string, status domain.VerificationStatus) (*domain.Account, error) {
	if !auth.IsAllowed(actor, auth.ActionVerifyAccounts, nil) {
		return nil, auth.Forbidden()
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown verification status", map[string]any{"status": string(status)})
	}
	var (
		account  *domain.Account
		previous domain.VerificationStatus
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return notFound(err, "account", accountID)
		}
		previous = account.VerificationStatus
		account.VerificationStatus = status
		return s.accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	if previous != status {
		publishEvent(ctx, s.deps.Dispatcher, events.Event{
			Type:      events.EventAccountVerification,
			SubjectID: account.ID,
			Actor:     events.ActorOf(actor),
			Payload:   events.AccountVerificationPayload{OldStatus: previous, NewStatus: status},
		})
	}
	return account, nil
}

// ListAccounts returns accounts matching filter for account verifiers.
func (s *AccountService) ListAccounts(ctx context.Context, actor *domain.Account, filter repository.AccountFilter) ([]domain.Account, error) {
	if !auth.IsAllowed(actor, auth.ActionVerifyAccounts, nil) {
		return nil, auth.Forbidden()
	}
	return s.accounts.List(ctx, filter)
}
