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

// PaintingRepository handles database operations for Painting.
type PaintingRepository struct {
	col *mongo.Collection
}

func NewPaintingRepository() *PaintingRepository {
	return &PaintingRepository{col: database.Collection(database.ColPaintings)}
}

// All returns every painting, newest first.
func (r *PaintingRepository) All(ctx context.Context) ([]models.Painting, error) {
	defer metrics.ObserveDBOp("paintings.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, findSortDesc("createdAt"))
	if err != nil {
		return nil, fmt.Errorf("paintings: find all: %w", err)
	}
	var paintings []models.Painting
	if err := cur.All(ctx, &paintings); err != nil {
		return nil, fmt.Errorf("paintings: decode all: %w", err)
	}
	return paintings, nil
}

// FindByID looks up a painting by ObjectID.
func (r *PaintingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Painting, error) {
	defer metrics.ObserveDBOp("paintings.findByID", time.Now())

	var painting models.Painting
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&painting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return painting, ErrNotFound
	}
	if err != nil {
		return painting, fmt.Errorf("paintings: find by id: %w", err)
	}
	return painting, nil
}

// Create persists a new painting.
func (r *PaintingRepository) Create(ctx context.Context, p *models.Painting) error {
	defer metrics.ObserveDBOp("paintings.insert", time.Now())

	p.CreatedAt = time.Now()
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("paintings: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// Update sets fields on a painting and returns the updated document.
func (r *PaintingRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.Painting, error) {
	defer metrics.ObserveDBOp("paintings.update", time.Now())

	var painting models.Painting
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, returnAfter()).Decode(&painting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return painting, ErrNotFound
	}
	if err != nil {
		return painting, fmt.Errorf("paintings: update: %w", err)
	}
	return painting, nil
}

// Delete removes a painting and returns the deleted document so the caller
// can clean up its stored image.
func (r *PaintingRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Painting, error) {
	defer metrics.ObserveDBOp("paintings.delete", time.Now())

	var painting models.Painting
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&painting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return painting, ErrNotFound
	}
	if err != nil {
		return painting, fmt.Errorf("paintings: delete: %w", err)
	}
	return painting, nil
}
