package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/service"
)

// JobsHandler exposes the job offer lifecycle.
type JobsHandler struct {
	offers *service.JobOfferService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(offers *service.JobOfferService) *JobsHandler {
	return &JobsHandler{offers: offers}
}

// CreateOffer POST /job/offer-create.
func (h *JobsHandler) CreateOffer(c *fiber.Ctx) error {
	var req dto.JobOfferCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	offer, err := h.offers.Create(c.UserContext(), currentAccount(c), service.JobOfferInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": jobOfferResponse(offer)})
}

// GetOffer GET /job/offer/:id.
func (h *JobsHandler) GetOffer(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	offer, err := h.offers.Get(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponse(offer)})
}

// UpdateOffer PUT /job/offer/:id.
func (h *JobsHandler) UpdateOffer(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	var req dto.JobOfferUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	offer, err := h.offers.Edit(c.UserContext(), currentAccount(c), id, service.JobOfferUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponse(offer)})
}

// RemoveOffer DELETE /job/offer/:id.
func (h *JobsHandler) RemoveOffer(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	if err := h.offers.Remove(c.UserContext(), currentAccount(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ConfirmOffer POST /job/admin/confirm/:id.
func (h *JobsHandler) ConfirmOffer(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	var req dto.ConfirmRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	confirmed := req.Confirmed == nil || *req.Confirmed
	offer, err := h.offers.Confirm(c.UserContext(), currentAccount(c), id, confirmed)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponse(offer)})
}

// ListPublic GET /job/offers.
func (h *JobsHandler) ListPublic(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	offers, err := h.offers.ListPublic(c.UserContext(), service.JobOfferListFilter{
		SearchTerm: optionalQuery(c, "search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponses(offers)})
}

// ListMine GET /job/my-offers.
func (h *JobsHandler) ListMine(c *fiber.Ctx) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	offers, err := h.offers.ListForEmployer(c.UserContext(), currentAccount(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponses(offers)})
}

// ListForModeration GET /job/admin/offers.
func (h *JobsHandler) ListForModeration(c *fiber.Ctx) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	offers, err := h.offers.ListForStaff(c.UserContext(), currentAccount(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobOfferResponses(offers)})
}

// Apply POST /job/offer/:id/apply.
func (h *JobsHandler) Apply(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	var req dto.ApplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	application, err := h.offers.Apply(c.UserContext(), currentAccount(c), id, req.CVID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(application)})
}

// ListApplications GET /job/offer/:id/applications.
func (h *JobsHandler) ListApplications(c *fiber.Ctx) error {
	id, err := pathID(c, "job offer")
	if err != nil {
		return err
	}
	apps, err := h.offers.ListApplications(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(apps, func(a domain.JobOfferApplication, _ int) dto.ApplicationResponse {
		return applicationResponse(&a)
	})})
}

func listFilter(c *fiber.Ctx) (service.JobOfferListFilter, error) {
	confirmed, err := optionalBoolQuery(c, "confirmed")
	if err != nil {
		return service.JobOfferListFilter{}, err
	}
	limit, offset := pagination(c)
	return service.JobOfferListFilter{
		Confirmed:  confirmed,
		SearchTerm: optionalQuery(c, "search"),
		Limit:      limit,
		Offset:     offset,
	}, nil
}
