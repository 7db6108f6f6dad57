package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/social-services/internal/service"
)

// NotificationsHandler exposes the caller's inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	limit, _ := pagination(c)
	items, err := h.notifications.Inbox(c.UserContext(), currentAccount(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Clear DELETE /notifications.
func (h *NotificationsHandler) Clear(c *fiber.Ctx) error {
	if err := h.notifications.ClearInbox(c.UserContext(), currentAccount(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
