// Package services holds the portal's business rules. Handlers translate
// HTTP into calls on these types and never touch repositories directly.
package services

import (
	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/config"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/mailer"
	"github.com/arzan03/CampusPortal/internal/ratelimit"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/arzan03/CampusPortal/internal/storage"
)

type Services struct {
	Auth          *AuthService
	OTP           *OTPService
	Listings      *ListingService
	Moderation    *ModerationService
	Notifications *NotificationService
	Users         *UserService
}

func New(store *repository.Store, mail mailer.Mailer, limiter ratelimit.Limiter, tokens *auth.TokenManager, objects storage.ObjectStore, otpCfg config.OTPConfig, log logging.Logger) *Services {
	notify := NewNotificationService(store.Notifications, log.With("component", "notifications"))
	otp := NewOTPService(store.Users, mail, limiter, otpCfg, log.With("component", "otp"))

	return &Services{
		Auth:          NewAuthService(store.Users, otp, tokens, log.With("component", "auth")),
		OTP:           otp,
		Listings:      NewListingService(store, notify, objects, log.With("component", "listings")),
		Moderation:    NewModerationService(store, notify, log.With("component", "moderation")),
		Notifications: notify,
		Users:         NewUserService(store.Users, log.With("component", "users")),
	}
}
