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

// CartRepository handles database operations for Cart. Each user has at most
// one cart document, enforced by a unique index on userId.
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository() *CartRepository {
	return &CartRepository{col: database.Collection(database.ColCarts)}
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	defer metrics.ObserveDBOp("carts.getOrCreate", time.Now())

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$setOnInsert": bson.M{"userId": userID, "items": []models.CartItem{}},
			"$set":         bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&cart)
	if err != nil {
		return cart, fmt.Errorf("carts: get or create: %w", err)
	}
	return cart, nil
}

// Save replaces the cart's item list.
func (r *CartRepository) Save(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	defer metrics.ObserveDBOp("carts.save", time.Now())

	if items == nil {
		items = []models.CartItem{}
	}

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&cart)
	if err != nil {
		return cart, fmt.Errorf("carts: save: %w", err)
	}
	return cart, nil
}

// UpdateQuantity sets the quantity of one cart line in place.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (models.Cart, error) {
	defer metrics.ObserveDBOp("carts.updateQuantity", time.Now())

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID, "items._id": itemID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": time.Now()}},
		returnAfter(),
	).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cart, ErrNotFound
	}
	if err != nil {
		return cart, fmt.Errorf("carts: update quantity: %w", err)
	}
	return cart, nil
}

// RemoveItem pulls one line out of the cart.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (models.Cart, error) {
	defer metrics.ObserveDBOp("carts.removeItem", time.Now())

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"_id": itemID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		returnAfter(),
	).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cart, ErrNotFound
	}
	if err != nil {
		return cart, fmt.Errorf("carts: remove item: %w", err)
	}
	return cart, nil
}

// Clear empties the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	defer metrics.ObserveDBOp("carts.clear", time.Now())

	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("carts: clear: %w", err)
	}
	return nil
}
