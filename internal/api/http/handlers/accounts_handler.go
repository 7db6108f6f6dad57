package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
	"github.com/spec-kit/social-services/internal/service"
)

// AccountsHandler exposes registration, login and account moderation endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// RegisterStandard handles POST /auth/register/standard.
func (h *AccountsHandler) RegisterStandard(c *fiber.Ctx) error {
	var req dto.StandardRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	account, err := h.accounts.Register(c.UserContext(), service.StandardRegistration{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(account)})
}

// RegisterEmployer handles POST /auth/register/employer.
func (h *AccountsHandler) RegisterEmployer(c *fiber.Ctx) error {
	var req dto.EmployerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	account, err := h.accounts.Register(c.UserContext(), service.EmployerRegistration{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(account)})
}

// Login handles POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountResponse(session.Account),
			"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// Me handles GET /accounts/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	account, err := h.accounts.Me(c.UserContext(), currentAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// CreateStaff handles POST /accounts/staff.
func (h *AccountsHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	account, err := h.accounts.CreateStaff(c.UserContext(), currentAccount(c), service.StaffRegistration{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Groups:   lo.Map(req.Groups, func(g string, _ int) domain.StaffGroup { return domain.StaffGroup(g) }),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(account)})
}

// SetVerification handles POST /accounts/:id/verification.
func (h *AccountsHandler) SetVerification(c *fiber.Ctx) error {
	id, err := pathID(c, "account")
	if err != nil {
		return err
	}
	var req dto.VerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := h.accounts.SetVerificationStatus(c.UserContext(), currentAccount(c), id, domain.VerificationStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(account)})
}

// List handles GET /accounts, filtered by type, status and group.
func (h *AccountsHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.AccountFilter{Limit: limit, Offset: offset}
	if v := optionalQuery(c, "type"); v != nil {
		filter.Type = lo.ToPtr(domain.AccountType(*v))
	}
	if v := optionalQuery(c, "status"); v != nil {
		filter.Status = lo.ToPtr(domain.VerificationStatus(*v))
	}
	if v := optionalQuery(c, "group"); v != nil {
		filter.Group = lo.ToPtr(domain.StaffGroup(*v))
	}

	accounts, err := h.accounts.ListAccounts(c.UserContext(), currentAccount(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": lo.Map(accounts, func(a domain.Account, _ int) dto.AccountResponse { return accountResponse(&a) }),
	})
}
