package handlers

import (
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	u, err := h.users.Profile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	u, err := h.users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user": fiber.Map{
			"name":   u.Name,
			"email":  u.Email,
			"phone":  u.Phone,
			"regdNo": u.RegdNo,
			"role":   u.Role,
		},
	})
}

// ListUsers lists all accounts without credentials.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}
