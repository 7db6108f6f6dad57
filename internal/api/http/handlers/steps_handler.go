package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/service"
)

// StepsHandler exposes the onboarding guide tree.
type StepsHandler struct {
	steps *service.StepService
}

// NewStepsHandler constructs handler.
func NewStepsHandler(steps *service.StepService) *StepsHandler {
	return &StepsHandler{steps: steps}
}

// Tree GET /steps.
func (h *StepsHandler) Tree(c *fiber.Ctx) error {
	roots, err := h.steps.Tree(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(roots, func(node *domain.StepNode, _ int) dto.StepResponse {
		return stepNodeResponse(node)
	})})
}

// CreateStep POST /steps/step.
func (h *StepsHandler) CreateStep(c *fiber.Ctx) error {
	var req dto.StepCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	step, err := h.steps.CreateStep(c.UserContext(), currentAccount(c), service.StepInput{
		ParentID:    req.ParentID,
		Title:       req.Title,
		Description: req.Description,
		Video:       req.Video,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": stepResponse(step)})
}

// GetStep GET /steps/step/:id.
func (h *StepsHandler) GetStep(c *fiber.Ctx) error {
	id, err := pathID(c, "step")
	if err != nil {
		return err
	}
	node, err := h.steps.GetStep(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stepNodeResponse(node)})
}

// UpdateStep PUT /steps/step/:id.
func (h *StepsHandler) UpdateStep(c *fiber.Ctx) error {
	id, err := pathID(c, "step")
	if err != nil {
		return err
	}
	var req dto.StepUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	step, err := h.steps.UpdateStep(c.UserContext(), currentAccount(c), id, service.StepUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Video:       req.Video,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stepResponse(step)})
}

// DeleteStep DELETE /steps/step/:id.
func (h *StepsHandler) DeleteStep(c *fiber.Ctx) error {
	id, err := pathID(c, "step")
	if err != nil {
		return err
	}
	if err := h.steps.DeleteStep(c.UserContext(), currentAccount(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateSubStep POST /steps/step/:id/substeps.
func (h *StepsHandler) CreateSubStep(c *fiber.Ctx) error {
	id, err := pathID(c, "step")
	if err != nil {
		return err
	}
	var req dto.SubStepCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sub, err := h.steps.CreateSubStep(c.UserContext(), currentAccount(c), id, service.SubStepInput{
		Title:       req.Title,
		Description: req.Description,
		Video:       req.Video,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": subStepResponse(*sub)})
}

// SwitchPlaces POST /steps/step/:id/switch.
func (h *StepsHandler) SwitchPlaces(c *fiber.Ctx) error {
	id, err := pathID(c, "step")
	if err != nil {
		return err
	}
	var req dto.SwitchPlacesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ordered, err := h.steps.SwitchPlaces(c.UserContext(), currentAccount(c), id, req.First, req.Second)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subStepResponses(ordered)})
}

// UpdateSubStep PUT /steps/substep/:id.
func (h *StepsHandler) UpdateSubStep(c *fiber.Ctx) error {
	id, err := pathID(c, "substep")
	if err != nil {
		return err
	}
	var req dto.SubStepUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sub, err := h.steps.UpdateSubStep(c.UserContext(), currentAccount(c), id, service.SubStepUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Video:       req.Video,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subStepResponse(*sub)})
}

// MoveSubStep POST /steps/substep/:id/move.
func (h *StepsHandler) MoveSubStep(c *fiber.Ctx) error {
	id, err := pathID(c, "substep")
	if err != nil {
		return err
	}
	var req dto.MoveToSpotRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ordered, err := h.steps.MoveToSpot(c.UserContext(), currentAccount(c), id, *req.Order)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subStepResponses(ordered)})
}

// DeleteSubStep DELETE /steps/substep/:id.
func (h *StepsHandler) DeleteSubStep(c *fiber.Ctx) error {
	id, err := pathID(c, "substep")
	if err != nil {
		return err
	}
	if err := h.steps.DeleteSubStep(c.UserContext(), currentAccount(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
