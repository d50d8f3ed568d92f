// Package repository declares the persistence contracts used by the services.
// Implementations live in the mongostore and memory subpackages.
package repository

import (
	"context"
	"time"

	"github.com/arzan03/CampusPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository stores accounts. Lookups that find nothing return
// common.ErrNotFound; unique violations return common.ErrAlreadyExists.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrRegdNo(ctx context.Context, email, regdNo string) (bool, error)
	List(ctx context.Context) ([]models.User, error)

	// SetOTP replaces whatever OTP is stored on the user.
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time, passwordReset bool) error
	// ConsumeOTP applies change and clears the OTP in a single update that
	// only matches while code is still stored. A consumed or replaced code
	// yields common.ErrNotFound.
	ConsumeOTP(ctx context.Context, id primitive.ObjectID, code string, change models.OTPConsumption) error

	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) (*models.User, error)
	SetRoleByEmail(ctx context.Context, email, role string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StatusSetter is the kind-agnostic slice of a listing store that moderation
// needs.
type StatusSetter interface {
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.ListingBase, error)
}

// ListingRepository stores one kind of moderated submission. Results are
// ordered newest first.
type ListingRepository[T any] interface {
	StatusSetter
	Insert(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindByStatus(ctx context.Context, status models.Status) ([]T, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]T, error)
}

// NoteRepository adds download accounting to the note store.
type NoteRepository interface {
	ListingRepository[models.Note]
	IncrementDownloads(ctx context.Context, id primitive.ObjectID) error
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, user primitive.ObjectID, unreadOnly bool) ([]models.Notification, error)
	FindAll(ctx context.Context) ([]models.Notification, error)
	// MarkRead only matches notifications owned by user.
	MarkRead(ctx context.Context, id, user primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, user primitive.ObjectID) (int64, error)
}

// Store bundles every repository the server needs.
type Store struct {
	Users         UserRepository
	LostItems     ListingRepository[models.LostItem]
	Marketplace   ListingRepository[models.MarketplaceItem]
	Notes         NoteRepository
	Notifications NotificationRepository
}
