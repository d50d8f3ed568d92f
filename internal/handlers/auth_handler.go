package handlers

import (
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	res, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(otpResponse(res))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	s, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": s.Token,
		"user":  sessionUser(s),
	})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req services.VerifyInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	s, err := h.auth.VerifyEmail(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Email verified successfully.",
		"token":       s.Token,
		"user":        sessionUser(s),
		"directLogin": true,
	})
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req services.EmailInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	res, err := h.auth.ResendOTP(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(otpResponse(res))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req services.EmailInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	res, err := h.auth.ForgotPassword(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(otpResponse(res))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	if err := h.auth.ResetPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully. You can now login with your new password."})
}

func otpResponse(res *services.OTPResult) fiber.Map {
	body := fiber.Map{"message": res.Message, "email": res.Email}
	if res.Demo {
		body["demo"] = true
	}
	return body
}

func sessionUser(s *services.Session) fiber.Map {
	return fiber.Map{
		"id":    s.User.ID.Hex(),
		"name":  s.User.Name,
		"email": s.User.Email,
		"role":  s.User.Role,
	}
}
