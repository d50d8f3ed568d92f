package handlers

import (
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	moderation *services.ModerationService
	listings   *services.ListingService
	users      *services.UserService
}

func NewAdminHandler(moderation *services.ModerationService, listings *services.ListingService, users *services.UserService) *AdminHandler {
	return &AdminHandler{moderation: moderation, listings: listings, users: users}
}

func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, models.StatusApproved)
}

func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, models.StatusRejected)
}

func (h *AdminHandler) decide(c *fiber.Ctx, status models.Status) error {
	kind, err := models.ParseKind(c.Params("type"))
	if err != nil {
		return common.NewError(common.ErrValidation, "Invalid item type")
	}

	item, err := h.moderation.Decide(c.UserContext(), middleware.CurrentUser(c).Role, kind, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully."})
}

func (h *AdminHandler) AddAdmin(c *fiber.Ctx) error {
	var req services.PromoteInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	u, err := h.users.Promote(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User promoted to admin successfully", "user": u})
}

// Pending returns all three moderation queues.
func (h *AdminHandler) Pending(c *fiber.Ctx) error {
	overview, err := h.listings.Pending(c.UserContext(), middleware.CurrentUser(c).Role)
	if err != nil {
		return err
	}
	return c.JSON(overview)
}
