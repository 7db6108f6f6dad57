package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/domain"
	apperrors "github.com/spec-kit/social-services/pkg/util"
)

// parseBody decodes the JSON body into req and checks its validate tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return invalidPayload()
	}
	return apperrors.ValidateStruct(req)
}

// currentAccount returns the caller, or nil for anonymous requests.
func currentAccount(c *fiber.Ctx) *domain.Account {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return nil
	}
	return account
}

// pathID returns a copy of the :id route parameter. Ids that are not UUIDs can never match a
// row, so they are reported as a missing resource.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	id := utils.CopyString(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func optionalBoolQuery(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid query parameter", map[string]any{key: "must be a boolean"})
	}
	return &v, nil
}

func accountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:                 a.ID,
		Email:              a.Email,
		Name:               a.Name,
		Type:               string(a.Type),
		VerificationStatus: string(a.VerificationStatus),
		Groups:             lo.Map(a.Groups, func(g domain.StaffGroup, _ int) string { return string(g) }),
		CreatedAt:          a.CreatedAt,
	}
}

func subStepResponse(s domain.SubStep) dto.SubStepResponse {
	return dto.SubStepResponse{
		ID:          s.ID,
		StepID:      s.StepID,
		Title:       s.Title,
		Description: s.Description,
		Video:       s.Video,
		Order:       s.Order,
		UpdatedAt:   s.UpdatedAt,
	}
}

func subStepResponses(subs []domain.SubStep) []dto.SubStepResponse {
	return lo.Map(subs, func(s domain.SubStep, _ int) dto.SubStepResponse { return subStepResponse(s) })
}

func stepResponse(step *domain.Step) dto.StepResponse {
	return dto.StepResponse{
		ID:          step.ID,
		ParentID:    step.ParentID,
		Title:       step.Title,
		Description: step.Description,
		Video:       step.Video,
		SubSteps:    []dto.SubStepResponse{},
		Children:    []dto.StepResponse{},
		UpdatedAt:   step.UpdatedAt,
	}
}

func stepNodeResponse(node *domain.StepNode) dto.StepResponse {
	resp := stepResponse(&node.Step)
	resp.SubSteps = subStepResponses(node.SubSteps)
	resp.Children = lo.Map(node.Children, func(child *domain.StepNode, _ int) dto.StepResponse {
		return stepNodeResponse(child)
	})
	return resp
}

func jobOfferResponse(o *domain.JobOffer) dto.JobOfferResponse {
	return dto.JobOfferResponse{
		ID:          o.ID,
		EmployerID:  o.EmployerID,
		Title:       o.Title,
		Description: o.Description,
		Location:    o.Location,
		SalaryMin:   o.SalaryMin,
		SalaryMax:   o.SalaryMax,
		Confirmed:   o.Confirmed,
		Removed:     o.Removed,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func jobOfferResponses(offers []domain.JobOffer) []dto.JobOfferResponse {
	return lo.Map(offers, func(o domain.JobOffer, _ int) dto.JobOfferResponse { return jobOfferResponse(&o) })
}

func applicationResponse(a *domain.JobOfferApplication) dto.ApplicationResponse {
	return dto.ApplicationResponse{ID: a.ID, OfferID: a.OfferID, UserID: a.UserID, CVID: a.CVID, CreatedAt: a.CreatedAt}
}

func cvResponse(cv *domain.CV) dto.CVResponse {
	return dto.CVResponse{ID: cv.ID, Name: cv.Name, DocumentURL: cv.DocumentURL, CreatedAt: cv.CreatedAt}
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
