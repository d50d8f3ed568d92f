// Package mongostore implements the repository contracts on MongoDB.
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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{col: database.Collection(db.UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return common.NewError(common.ErrAlreadyExists, "User already exists with this email or registration number")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0, "otp": 0, "otp_expiry": 0})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ExistsByEmailOrRegdNo(ctx context.Context, email, regdNo string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"regd_no": regdNo},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time, passwordReset bool) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"otp":            code,
		"otp_expiry":     expiry,
		"password_reset": passwordReset,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("could not store otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.NewError(common.ErrNotFound, "User not found")
	}
	return nil
}

func (r *UserRepository) ConsumeOTP(ctx context.Context, id primitive.ObjectID, code string, change models.OTPConsumption) error {
	set := bson.M{
		"password_reset": false,
		"updated_at":     time.Now().UTC(),
	}
	if change.MarkVerified {
		set["is_verified"] = true
	}
	if change.PasswordHash != "" {
		set["password"] = change.PasswordHash
	}

	// Matching on the code makes the consumption single use even when two
	// requests race with the same OTP.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "otp": code},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"otp": "", "otp_expiry": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.NewError(common.ErrNotFound, "OTP already used")
	}
	return nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, filter bson.M, set bson.M) (*models.User, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user models.User
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) (*models.User, error) {
	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if phone != "" {
		set["phone"] = phone
	}
	return r.findOneAndSet(ctx, bson.M{"_id": id}, set)
}

func (r *UserRepository) SetRoleByEmail(ctx context.Context, email, role string) (*models.User, error) {
	return r.findOneAndSet(ctx, bson.M{"email": email}, bson.M{"role": role})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.NewError(common.ErrNotFound, "User not found")
	}
	return nil
}
