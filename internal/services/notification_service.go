package services

import (
	"context"
	"strings"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotifyInput struct {
	User    primitive.ObjectID
	Message string
	Type    models.NotificationType
	ItemID  *primitive.ObjectID
}

// NotificationService is the only place notifications are created.
type NotificationService struct {
	repo repository.NotificationRepository
	log  logging.Logger
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, log logging.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log, now: time.Now}
}

func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, common.NewError(common.ErrValidation, "Message is required")
	}
	if in.User.IsZero() {
		return nil, common.NewError(common.ErrValidation, "userId is required")
	}
	typ := in.Type
	if typ == "" {
		typ = models.NotiSystem
	}
	if !typ.Valid() {
		return nil, common.Errorf(common.ErrValidation, "Unknown notification type %q", typ)
	}

	now := s.now().UTC()
	n := &models.Notification{
		User:      in.User,
		Message:   msg,
		Type:      typ,
		ItemID:    in.ItemID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "notification created", "user_id", in.User.Hex(), "type", typ)
	return n, nil
}

func (s *NotificationService) ForUser(ctx context.Context, user primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.FindByUser(ctx, user, unreadOnly)
}

// All lists every notification. Admin only.
func (s *NotificationService) All(ctx context.Context) ([]models.Notification, error) {
	return s.repo.FindAll(ctx)
}

func (s *NotificationService) MarkRead(ctx context.Context, user primitive.ObjectID, id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.NewError(common.ErrValidation, "Invalid notification id")
	}
	return s.repo.MarkRead(ctx, oid, user)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, user primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllRead(ctx, user)
}
