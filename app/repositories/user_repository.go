package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/database"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: database.Collection(database.ColUsers)}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBOp("users.findByEmail", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// FindByID looks up a user by ObjectID.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer metrics.ObserveDBOp("users.findByID", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("users: find by id: %w", err)
	}
	return user, nil
}

// Create persists a new user document. A unique index on email turns races
// between two registrations into a duplicate-key error.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveDBOp("users.insert", time.Now())

	user.CreatedAt = time.Now()
	res, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// UpdateProfile sets the mutable profile fields on a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.User, error) {
	defer metrics.ObserveDBOp("users.updateProfile", time.Now())

	var user models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return user, ErrDuplicate
	}
	if err != nil {
		return user, fmt.Errorf("users: update profile: %w", err)
	}
	return user, nil
}

// All returns every user sorted by creation date descending.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveDBOp("users.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, findSortDesc("createdAt"))
	if err != nil {
		return nil, fmt.Errorf("users: find all: %w", err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("users: decode all: %w", err)
	}
	return users, nil
}

// SetRole changes a user's role.
func (r *UserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	defer metrics.ObserveDBOp("users.setRole", time.Now())
	return r.UpdateProfile(ctx, id, bson.M{"role": role})
}
