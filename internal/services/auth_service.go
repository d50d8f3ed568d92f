package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
)

const (
	msgSignupSent     = "OTP sent to your email. Please verify to complete registration."
	msgSignupDegraded = "Account created successfully. However, we could not send the verification email. Please contact support."
	msgSignupDemo     = "Account created. Email delivery is in demo mode, the verification code was written to the server log."
)

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	RegdNo   string `json:"regdNo" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type VerifyInput struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type EmailInput struct {
	Email string `json:"email" validate:"required"`
}

type ResetInput struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// OTPResult is returned by the flows that issue a code.
type OTPResult struct {
	Message string
	Email   string
	Demo    bool
}

// Session is a signed token together with the user it was issued to.
type Session struct {
	Token string
	User  *models.User
}

type AuthService struct {
	users  repository.UserRepository
	otp    *OTPService
	tokens *auth.TokenManager
	log    logging.Logger
	now    func() time.Time

	bootstrapAdmin string
}

func NewAuthService(users repository.UserRepository, otp *OTPService, tokens *auth.TokenManager, log logging.Logger) *AuthService {
	return &AuthService{users: users, otp: otp, tokens: tokens, log: log, now: time.Now}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithBootstrapAdmin makes email an admin as soon as it is verified, so a
// fresh deployment can reach the admin routes.
func (s *AuthService) WithBootstrapAdmin(email string) *AuthService {
	s.bootstrapAdmin = normalizeEmail(email)
	return s
}

// Signup creates an unverified account and sends it a verification code.
// Delivery problems never fail the signup.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*OTPResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.RegdNo = strings.TrimSpace(in.RegdNo)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrRegdNo(ctx, in.Email, in.RegdNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.ErrAlreadyExists, "User already exists with this email or registration number")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Name:      in.Name,
		RegdNo:    in.RegdNo,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  hash,
		Role:      models.RoleUser,
		JoinDate:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID.Hex(), "email", user.Email)

	delivery, err := s.otp.Request(ctx, user, PurposeVerify, false)
	if err != nil {
		return nil, err
	}

	res := &OTPResult{Message: msgSignupSent, Email: user.Email, Demo: delivery.Demo}
	switch {
	case delivery.Failed():
		res.Message = msgSignupDegraded
	case delivery.Demo:
		res.Message = msgSignupDemo
	}
	return res, nil
}

// Login checks credentials. Unverified accounts are refused before the
// password is looked at.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if in.IsAdmin && !user.IsAdmin() {
		return nil, common.NewError(common.ErrForbidden, "Invalid credentials")
	}
	if !user.IsAdmin() && !user.IsVerified {
		return nil, common.NewError(common.ErrForbidden, "Email not verified. Please verify your email first.")
	}
	if !auth.VerifyPassword(in.Password, user.Password) {
		return nil, common.NewError(common.ErrUnauthorized, "Invalid credentials")
	}

	return s.session(user)
}

// VerifyEmail consumes a verification code and logs the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, in VerifyInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if in.Email == "" || in.OTP == "" {
		return nil, common.NewError(common.ErrValidation, "Email and OTP are required")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, common.NewError(common.ErrAlreadyVerified, "Email is already verified")
	}

	if err := s.otp.Verify(ctx, user, PurposeVerify, in.OTP, models.OTPConsumption{MarkVerified: true}); err != nil {
		return nil, err
	}
	user.IsVerified = true
	s.log.Info(ctx, "email verified", "user_id", user.ID.Hex())

	if s.bootstrapAdmin != "" && user.Email == s.bootstrapAdmin && !user.IsAdmin() {
		promoted, err := s.users.SetRoleByEmail(ctx, user.Email, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		user = promoted
		s.log.Info(ctx, "bootstrap admin promoted", "user_id", user.ID.Hex())
	}

	return s.session(user)
}

func (s *AuthService) ResendOTP(ctx context.Context, in EmailInput) (*OTPResult, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" {
		return nil, common.NewError(common.ErrValidation, "Email is required")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, common.NewError(common.ErrAlreadyVerified, "Email is already verified")
	}

	delivery, err := s.otp.Request(ctx, user, PurposeVerify, true)
	if err != nil {
		return nil, err
	}
	if delivery.Failed() {
		return nil, common.NewError(common.ErrDelivery, "Failed to send OTP email")
	}
	return &OTPResult{Message: "New OTP sent to your email", Email: user.Email, Demo: delivery.Demo}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, in EmailInput) (*OTPResult, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" {
		return nil, common.NewError(common.ErrValidation, "Email is required")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	delivery, err := s.otp.Request(ctx, user, PurposeReset, true)
	if err != nil {
		return nil, err
	}
	if delivery.Failed() {
		return nil, common.NewError(common.ErrDelivery, "Failed to send password reset email")
	}
	return &OTPResult{Message: "Password reset OTP sent to your email", Email: user.Email, Demo: delivery.Demo}, nil
}

// ResetPassword consumes a reset code and stores the new password hash in
// the same update. The account's verification state is left alone.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetInput) error {
	in.Email = normalizeEmail(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if in.Email == "" || in.OTP == "" || in.NewPassword == "" {
		return common.NewError(common.ErrValidation, "Email, OTP, and new password are required")
	}
	if err := validateInput(in); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.otp.Verify(ctx, user, PurposeReset, in.OTP, models.OTPConsumption{PasswordHash: hash}); err != nil {
		return err
	}
	s.log.Info(ctx, "password reset", "user_id", user.ID.Hex())
	return nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &Session{Token: token, User: user}, nil
}
