package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/service"
)

// CVHandler manages CV records of the caller.
type CVHandler struct {
	cvs *service.CVService
}

// NewCVHandler constructs handler.
func NewCVHandler(cvs *service.CVService) *CVHandler {
	return &CVHandler{cvs: cvs}
}

// Create POST /cv.
func (h *CVHandler) Create(c *fiber.Ctx) error {
	var req dto.CVCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	cv, err := h.cvs.Create(c.UserContext(), currentAccount(c), service.CVInput{Name: req.Name, DocumentURL: req.DocumentURL})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": cvResponse(cv)})
}

// List GET /cv.
func (h *CVHandler) List(c *fiber.Ctx) error {
	cvs, err := h.cvs.List(c.UserContext(), currentAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(cvs, func(cv domain.CV, _ int) dto.CVResponse { return cvResponse(&cv) })})
}

// Delete DELETE /cv/:id.
func (h *CVHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "cv")
	if err != nil {
		return err
	}
	if err := h.cvs.Delete(c.UserContext(), currentAccount(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
