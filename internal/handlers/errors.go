package handlers

import (
	"errors"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrOTPInvalid),
		errors.Is(err, common.ErrOTPExpired),
		errors.Is(err, common.ErrAlreadyVerified):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrTooManyRequests):
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler writes every error as {"error": message}.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		msg := common.Message(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, msg = fe.Code, fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
			userID, _ := c.Locals(middleware.LocalUserID).(string)
			logging.ForRequest(log, requestID, userID).Error(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "status", code, "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

func badBody() error {
	return common.NewError(common.ErrValidation, "Invalid request body")
}
