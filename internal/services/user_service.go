package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type PromoteInput struct {
	Email string `json:"email"`
}

type UserService struct {
	users repository.UserRepository
	log   logging.Logger
}

func NewUserService(users repository.UserRepository, log logging.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

// UpdateProfile changes name and phone. Empty fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	return s.users.UpdateProfile(ctx, id, strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone))
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Delete removes an account other than the caller's own.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.NewError(common.ErrValidation, "Invalid user id")
	}
	if oid == actor.ID {
		return common.NewError(common.ErrValidation, "You cannot delete your own account")
	}
	if err := s.users.Delete(ctx, oid); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", id, "by", actor.ID.Hex())
	return nil
}

// Promote grants the admin role to the account registered under email.
func (s *UserService) Promote(ctx context.Context, in PromoteInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" {
		return nil, common.NewError(common.ErrValidation, "Email is required")
	}
	u, err := s.users.SetRoleByEmail(ctx, in.Email, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user promoted to admin", "user_id", u.ID.Hex())
	return u, nil
}

// BootstrapAdmin promotes the configured admin account at startup when it
// already exists and is verified. It reports whether email is now an admin;
// unknown or unverified accounts are left to AuthService.VerifyEmail.
func (s *UserService) BootstrapAdmin(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if u.IsAdmin() {
		return true, nil
	}
	if !u.IsVerified {
		return false, nil
	}
	if _, err := s.Promote(ctx, PromoteInput{Email: email}); err != nil {
		return false, err
	}
	return true, nil
}
