package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Insert(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepository) FindByUser(_ context.Context, user primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	return r.newestFirst(func(n models.Notification) bool {
		return n.User == user && (!unreadOnly || !n.Read)
	}), nil
}

func (r *NotificationRepository) FindAll(_ context.Context) ([]models.Notification, error) {
	return r.newestFirst(func(models.Notification) bool { return true }), nil
}

// newestFirst walks the slice backwards since inserts are appended in time
// order.
func (r *NotificationRepository) newestFirst(keep func(models.Notification) bool) []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Notification{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if keep(r.items[i]) {
			out = append(out, r.items[i])
		}
	}
	return out
}

func (r *NotificationRepository) MarkRead(_ context.Context, id, user primitive.ObjectID) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id && r.items[i].User == user {
			r.items[i].Read = true
			r.items[i].UpdatedAt = time.Now().UTC()
			n := r.items[i]
			return &n, nil
		}
	}
	return nil, common.NewError(common.ErrNotFound, "Notification not found or not authorized")
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, user primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	now := time.Now().UTC()
	for i := range r.items {
		if r.items[i].User == user && !r.items[i].Read {
			r.items[i].Read = true
			r.items[i].UpdatedAt = now
			count++
		}
	}
	return count, nil
}

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(),
		LostItems:     NewLostItemRepository(),
		Marketplace:   NewMarketplaceRepository(),
		Notes:         NewNoteRepository(),
		Notifications: NewNotificationRepository(),
	}
}
