package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexPlan lists the indexes each collection needs. Unique indexes on users
// back the email / registration number invariant.
func IndexPlan() map[string][]mongo.IndexModel {
	listing := func() []mongo.IndexModel {
		return []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		}
	}

	notes := append(listing(),
		mongo.IndexModel{Keys: bson.D{{Key: "subject", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "semester", Value: 1}}},
	)

	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "regd_no", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_regd_no")},
		},
		LostItemsCollection:        listing(),
		MarketplaceItemsCollection: append(listing(), mongo.IndexModel{Keys: bson.D{{Key: "price", Value: 1}}}),
		NotesCollection:            notes,
		NotificationsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "read", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// EnsureIndexes creates every index from IndexPlan. It is idempotent.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	for name, models := range IndexPlan() {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
