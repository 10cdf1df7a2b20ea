package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/database"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

// PromoRepository handles database operations for PromoCode.
type PromoRepository struct {
	col *mongo.Collection
}

func NewPromoRepository() *PromoRepository {
	return &PromoRepository{col: database.Collection(database.ColPromoCodes)}
}

// All returns every promo code, newest first.
func (r *PromoRepository) All(ctx context.Context) ([]models.PromoCode, error) {
	defer metrics.ObserveDBOp("promocodes.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, findSortDesc("createdAt"))
	if err != nil {
		return nil, fmt.Errorf("promocodes: find all: %w", err)
	}
	var codes []models.PromoCode
	if err := cur.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("promocodes: decode all: %w", err)
	}
	return codes, nil
}

// FindByCode looks up a promo code by its (uppercase) code.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (models.PromoCode, error) {
	defer metrics.ObserveDBOp("promocodes.findByCode", time.Now())

	var promo models.PromoCode
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&promo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return promo, ErrNotFound
	}
	if err != nil {
		return promo, fmt.Errorf("promocodes: find by code: %w", err)
	}
	return promo, nil
}

// Create persists a new promo code. The unique index on code surfaces races
// as a duplicate-key error.
func (r *PromoRepository) Create(ctx context.Context, p *models.PromoCode) error {
	defer metrics.ObserveDBOp("promocodes.insert", time.Now())

	p.CreatedAt = time.Now()
	res, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("promocodes: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// Update sets fields on a promo code and returns the updated document.
func (r *PromoRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.PromoCode, error) {
	defer metrics.ObserveDBOp("promocodes.update", time.Now())

	var promo models.PromoCode
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, returnAfter()).Decode(&promo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return promo, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return promo, ErrDuplicate
	}
	if err != nil {
		return promo, fmt.Errorf("promocodes: update: %w", err)
	}
	return promo, nil
}

// Delete removes a promo code.
func (r *PromoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveDBOp("promocodes.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("promocodes: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Use consumes one use of the code in a single conditional update. The filter
// only matches while the code is active and under its ceiling, so usedCount
// can never exceed maxUses no matter how many requests race. When the
// increment reaches the ceiling, a follow-up write flips active to false.
func (r *PromoRepository) Use(ctx context.Context, code string) (models.PromoCode, error) {
	defer metrics.ObserveDBOp("promocodes.use", time.Now())

	filter := bson.M{
		"code":   code,
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$usedCount", "$maxUses"}},
	}
	update := bson.M{"$inc": bson.M{"usedCount": 1}}

	var promo models.PromoCode
	err := r.col.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&promo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the code doesn't exist, or it is inactive/exhausted.
		if _, lookupErr := r.FindByCode(ctx, code); errors.Is(lookupErr, ErrNotFound) {
			return promo, ErrNotFound
		}
		return promo, ErrPromoExhausted
	}
	if err != nil {
		return promo, fmt.Errorf("promocodes: use: %w", err)
	}

	if promo.UsedCount >= promo.MaxUses {
		// Losing this write is harmless: the use filter re-checks the ceiling.
		if _, err := r.col.UpdateOne(ctx,
			bson.M{"_id": promo.ID},
			bson.M{"$set": bson.M{"active": false}},
		); err == nil {
			promo.Active = false
		}
	}

	return promo, nil
}

// DeactivateExpired flips active to false on every code whose expiry has
// passed. Returns how many codes were deactivated.
func (r *PromoRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	defer metrics.ObserveDBOp("promocodes.deactivateExpired", time.Now())

	res, err := r.col.UpdateMany(ctx,
		bson.M{"active": true, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("promocodes: deactivate expired: %w", err)
	}
	return res.ModifiedCount, nil
}
