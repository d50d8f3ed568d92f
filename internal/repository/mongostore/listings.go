package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/db"
	"github.com/arzan03/CampusPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// identifiable is satisfied by pointers to the listing models through the
// embedded ListingBase.
type identifiable interface {
	Base() *models.ListingBase
}

// ListingRepository stores one listing kind in its own collection.
type ListingRepository[T any] struct {
	col      *mongo.Collection
	notFound string
}

func newListingRepository[T any](database *mongo.Database, collection, notFound string) *ListingRepository[T] {
	return &ListingRepository[T]{col: database.Collection(collection), notFound: notFound}
}

func NewLostItemRepository(database *mongo.Database) *ListingRepository[models.LostItem] {
	return newListingRepository[models.LostItem](database, db.LostItemsCollection, "Item not found")
}

func NewMarketplaceRepository(database *mongo.Database) *ListingRepository[models.MarketplaceItem] {
	return newListingRepository[models.MarketplaceItem](database, db.MarketplaceItemsCollection, "Item not found")
}

func (r *ListingRepository[T]) Insert(ctx context.Context, item *T) error {
	if b, ok := any(item).(identifiable); ok && b.Base().ID.IsZero() {
		b.Base().ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert into %s: %w", r.col.Name(), err)
	}
	return nil
}

func (r *ListingRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var item T
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewError(common.ErrNotFound, r.notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", r.col.Name(), err)
	}
	return &item, nil
}

func (r *ListingRepository[T]) FindByStatus(ctx context.Context, status models.Status) ([]T, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *ListingRepository[T]) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]T, error) {
	return r.find(ctx, bson.M{"user": owner})
}

func (r *ListingRepository[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", r.col.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.col.Name(), err)
	}
	return items, nil
}

func (r *ListingRepository[T]) SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.ListingBase, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}

	var base models.ListingBase
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&base)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewError(common.ErrNotFound, r.notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update status in %s: %w", r.col.Name(), err)
	}
	return &base, nil
}

// NoteRepository is the note store with download accounting.
type NoteRepository struct {
	*ListingRepository[models.Note]
}

func NewNoteRepository(database *mongo.Database) *NoteRepository {
	return &NoteRepository{newListingRepository[models.Note](database, db.NotesCollection, "Note not found")}
}

func (r *NoteRepository) IncrementDownloads(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"download_count": 1}})
	if err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.NewError(common.ErrNotFound, r.notFound)
	}
	return nil
}
