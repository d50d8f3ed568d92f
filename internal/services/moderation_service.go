package services

import (
	"context"
	"fmt"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationService moves submissions out of the pending state.
type ModerationService struct {
	stores map[models.Kind]repository.StatusSetter
	notify *NotificationService
	log    logging.Logger
}

func NewModerationService(store *repository.Store, notify *NotificationService, log logging.Logger) *ModerationService {
	return &ModerationService{
		stores: map[models.Kind]repository.StatusSetter{
			models.KindLostItem:    store.LostItems,
			models.KindMarketplace: store.Marketplace,
			models.KindNote:        store.Notes,
		},
		notify: notify,
		log:    log,
	}
}

// Decide sets the status of one item and tells its owner. Repeating a
// decision is allowed and notifies again. The status change stands even when
// the notification cannot be stored; that failure is only logged.
func (s *ModerationService) Decide(ctx context.Context, actorRole string, kind models.Kind, id string, status models.Status) (*models.ListingBase, error) {
	if err := auth.RequireAdmin(actorRole); err != nil {
		return nil, err
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, common.Errorf(common.ErrValidation, "Invalid decision %q", status)
	}
	store, ok := s.stores[kind]
	if !ok {
		return nil, common.Errorf(common.ErrValidation, "Unknown listing type %q", kind)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.NewError(common.ErrValidation, "Invalid item id")
	}

	item, err := store.SetStatus(ctx, oid, status)
	if err != nil {
		return nil, err
	}

	typ := models.NotiApproval
	if status == models.StatusRejected {
		typ = models.NotiRejection
	}
	_, err = s.notify.Notify(ctx, NotifyInput{
		User:    item.User,
		Message: fmt.Sprintf("Your %s \"%s\" has been %s.", kind.Label(), item.Title, status),
		Type:    typ,
		ItemID:  &item.ID,
	})
	if err != nil {
		s.log.Error(ctx, "owner notification failed", "kind", kind, "id", id, "status", status, "error", err)
	}

	s.log.Info(ctx, "listing moderated", "kind", kind, "id", id, "status", status)
	return item, nil
}
