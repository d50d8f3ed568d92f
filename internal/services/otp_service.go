package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/config"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/mailer"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/ratelimit"
	"github.com/arzan03/CampusPortal/internal/repository"
)

// Purpose tells verification codes apart from password reset codes.
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a uniformly random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}

// Delivery reports how an issued code reached the user.
type Delivery struct {
	Demo bool
	Err  error
}

func (d Delivery) Failed() bool { return d.Err != nil }

type OTPService struct {
	users   repository.UserRepository
	mail    mailer.Mailer
	limiter ratelimit.Limiter
	cfg     config.OTPConfig
	log     logging.Logger

	now      func() time.Time
	generate func() (string, error)
}

func NewOTPService(users repository.UserRepository, mail mailer.Mailer, limiter ratelimit.Limiter, cfg config.OTPConfig, log logging.Logger) *OTPService {
	return &OTPService{
		users:    users,
		mail:     mail,
		limiter:  limiter,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		generate: GenerateOTP,
	}
}

func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

func attemptsKey(u *models.User, purpose Purpose) string {
	return fmt.Sprintf("otp:attempts:%s:%s", purpose, u.ID.Hex())
}

func cooldownKey(u *models.User) string {
	return "otp:cooldown:" + u.Email
}

// Request issues a new code for purpose and replaces any stored one. A
// delivery failure is reported in the returned Delivery, never as an error.
func (s *OTPService) Request(ctx context.Context, u *models.User, purpose Purpose, enforceCooldown bool) (Delivery, error) {
	if enforceCooldown && s.cfg.ResendCooldown > 0 {
		if !s.allow(ctx, cooldownKey(u), 1, s.cfg.ResendCooldown) {
			return Delivery{}, common.NewError(common.ErrTooManyRequests, "Please wait before requesting another OTP")
		}
	}

	code, err := s.generate()
	if err != nil {
		return Delivery{}, err
	}
	expiry := s.now().Add(s.cfg.TTL)

	if err := s.users.SetOTP(ctx, u.ID, code, expiry, purpose == PurposeReset); err != nil {
		return Delivery{}, err
	}
	u.OTP, u.OTPExpiry, u.PasswordReset = code, expiry, purpose == PurposeReset

	if err := s.limiter.Reset(ctx, attemptsKey(u, purpose)); err != nil {
		s.log.Warn(ctx, "failed to reset otp attempts", "error", err)
	}

	msg := mailer.VerificationMessage(u.Email, u.Name, code, s.cfg.TTL)
	if purpose == PurposeReset {
		msg = mailer.PasswordResetMessage(u.Email, u.Name, code, s.cfg.TTL)
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Warn(ctx, "otp delivery failed, code logged for demo use",
			"email", u.Email, "purpose", purpose, "otp", code, "error", err)
		return Delivery{Err: common.NewError(common.ErrDelivery, err.Error())}, nil
	}

	s.log.Info(ctx, "otp issued", "email", u.Email, "purpose", purpose, "expires", expiry)
	return Delivery{Demo: s.mail.DemoMode()}, nil
}

// Verify checks code against the stored one and, on success, applies change
// while clearing the code in a single update.
func (s *OTPService) Verify(ctx context.Context, u *models.User, purpose Purpose, code string, change models.OTPConsumption) error {
	if !s.allow(ctx, attemptsKey(u, purpose), s.cfg.MaxAttempts, s.cfg.TTL) {
		return common.NewError(common.ErrTooManyRequests, "Too many failed attempts. Please request a new OTP.")
	}

	stored := u.OTP
	if stored == "" || u.PasswordReset != (purpose == PurposeReset) ||
		subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return common.NewError(common.ErrOTPInvalid, "Invalid OTP")
	}
	if s.now().After(u.OTPExpiry) {
		return common.NewError(common.ErrOTPExpired, "OTP has expired. Please request a new one.")
	}

	err := s.users.ConsumeOTP(ctx, u.ID, code, change)
	if errors.Is(err, common.ErrNotFound) {
		// consumed or replaced by a concurrent request
		return common.NewError(common.ErrOTPInvalid, "Invalid OTP")
	}
	if err != nil {
		return err
	}

	if err := s.limiter.Reset(ctx, attemptsKey(u, purpose)); err != nil {
		s.log.Warn(ctx, "failed to reset otp attempts", "error", err)
	}
	u.OTP, u.OTPExpiry, u.PasswordReset = "", time.Time{}, false
	return nil
}

// allow fails open when the limiter backend is unavailable.
func (s *OTPService) allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	ok, err := s.limiter.Allow(ctx, key, limit, window)
	if err != nil {
		s.log.Warn(ctx, "rate limiter unavailable", "key", key, "error", err)
		return true
	}
	return ok
}
