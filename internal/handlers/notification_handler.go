package handlers

import (
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notify *services.NotificationService
}

func NewNotificationHandler(notify *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notify: notify}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list, err := h.notify.ForUser(c.UserContext(), middleware.CurrentUser(c).ID, false)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *NotificationHandler) Unread(c *fiber.Ctx) error {
	list, err := h.notify.ForUser(c.UserContext(), middleware.CurrentUser(c).ID, true)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Create adds a notification for the caller.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Message string                  `json:"message"`
		Type    models.NotificationType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	n, err := h.notify.Notify(c.UserContext(), services.NotifyInput{
		User:    middleware.CurrentUser(c).ID,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.notify.MarkRead(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(n)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	count, err := h.notify.MarkAllRead(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "count": count})
}

// All lists every user's notifications. Mounted under /admin.
func (h *NotificationHandler) All(c *fiber.Ctx) error {
	list, err := h.notify.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Send lets an admin address any user.
func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	var req struct {
		UserID  string                  `json:"userId"`
		Message string                  `json:"message"`
		Type    models.NotificationType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if req.Message == "" || req.UserID == "" {
		return common.NewError(common.ErrValidation, "Message and userId are required")
	}
	user, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return common.NewError(common.ErrValidation, "Invalid user id")
	}

	n, err := h.notify.Notify(c.UserContext(), services.NotifyInput{User: user, Message: req.Message, Type: req.Type})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}
