package middleware

import (
	"errors"
	"strings"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locals keys set by Authenticate.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// Authenticate validates the bearer token and loads the caller's account.
func Authenticate(tokens *auth.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return common.NewError(common.ErrUnauthorized, "No token, authorization denied")
		}

		// Ensure it's a Bearer token
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" {
			return common.NewError(common.ErrUnauthorized, "Invalid token format")
		}

		claims, err := tokens.Parse(tokenString)
		if errors.Is(err, auth.ErrTokenExpired) {
			return common.NewError(common.ErrUnauthorized, "Token has expired")
		}
		if err != nil {
			return common.NewError(common.ErrUnauthorized, "Token is not valid")
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return common.NewError(common.ErrUnauthorized, "Invalid token payload")
		}

		user, err := users.FindByID(c.UserContext(), id)
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrUnauthorized, "User no longer exists")
		}
		if err != nil {
			return err
		}
		user.Password = ""

		// Store user info in context for next handlers
		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID.Hex())
		c.Locals(LocalRole, user.Role)

		return c.Next()
	}
}

// RequireAdmin only lets accounts whose stored role is admin through. It
// must run after Authenticate.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals(LocalRole).(string)
	if err := auth.RequireAdmin(role); err != nil {
		return err
	}
	return c.Next()
}

// CurrentUser returns the account loaded by Authenticate.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}
