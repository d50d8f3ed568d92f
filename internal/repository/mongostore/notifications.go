package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/db"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(database *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: database.Collection(db.NotificationsCollection)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByUser(ctx context.Context, user primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user": user}
	if unreadOnly {
		filter["read"] = false
	}
	return r.find(ctx, filter)
}

func (r *NotificationRepository) FindAll(ctx context.Context) ([]models.Notification, error) {
	return r.find(ctx, bson.M{})
}

func (r *NotificationRepository) find(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, user primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}}

	var n models.Notification
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "user": user}, update, opts).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewError(common.ErrNotFound, "Notification not found or not authorized")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user": user, "read": false},
		bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.ModifiedCount, nil
}

// NewStore wires every Mongo repository against one database.
func NewStore(database *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(database),
		LostItems:     NewLostItemRepository(database),
		Marketplace:   NewMarketplaceRepository(database),
		Notes:         NewNoteRepository(database),
		Notifications: NewNotificationRepository(database),
	}
}
