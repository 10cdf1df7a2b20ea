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

// WorkshopRepository handles database operations for Workshop.
type WorkshopRepository struct {
	col *mongo.Collection
}

func NewWorkshopRepository() *WorkshopRepository {
	return &WorkshopRepository{col: database.Collection(database.ColWorkshops)}
}

// All returns every workshop sorted by date ascending.
func (r *WorkshopRepository) All(ctx context.Context) ([]models.Workshop, error) {
	defer metrics.ObserveDBOp("workshops.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, findSortAsc("date"))
	if err != nil {
		return nil, fmt.Errorf("workshops: find all: %w", err)
	}
	var workshops []models.Workshop
	if err := cur.All(ctx, &workshops); err != nil {
		return nil, fmt.Errorf("workshops: decode all: %w", err)
	}
	return workshops, nil
}

// FindByID looks up a workshop by ObjectID.
func (r *WorkshopRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Workshop, error) {
	defer metrics.ObserveDBOp("workshops.findByID", time.Now())

	var workshop models.Workshop
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&workshop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return workshop, ErrNotFound
	}
	if err != nil {
		return workshop, fmt.Errorf("workshops: find by id: %w", err)
	}
	return workshop, nil
}

// Create persists a new workshop.
func (r *WorkshopRepository) Create(ctx context.Context, w *models.Workshop) error {
	defer metrics.ObserveDBOp("workshops.insert", time.Now())

	w.CreatedAt = time.Now()
	if w.RegisteredParticipants == nil {
		w.RegisteredParticipants = []models.Participant{}
	}
	res, err := r.col.InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("workshops: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		w.ID = oid
	}
	return nil
}

// Update sets fields on a workshop and returns the updated document.
func (r *WorkshopRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.Workshop, error) {
	defer metrics.ObserveDBOp("workshops.update", time.Now())

	var workshop models.Workshop
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, returnAfter()).Decode(&workshop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return workshop, ErrNotFound
	}
	if err != nil {
		return workshop, fmt.Errorf("workshops: update: %w", err)
	}
	return workshop, nil
}

// Delete removes a workshop and returns the deleted document.
func (r *WorkshopRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Workshop, error) {
	defer metrics.ObserveDBOp("workshops.delete", time.Now())

	var workshop models.Workshop
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&workshop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return workshop, ErrNotFound
	}
	if err != nil {
		return workshop, fmt.Errorf("workshops: delete: %w", err)
	}
	return workshop, nil
}

// Book registers participant on workshop id in a single conditional update.
// The filter only matches while a seat is free and the user is not yet
// registered, so two concurrent bookings of the last seat resolve to exactly
// one success; availableSpots can never go negative.
func (r *WorkshopRepository) Book(ctx context.Context, id primitive.ObjectID, p models.Participant) (models.Workshop, error) {
	defer metrics.ObserveDBOp("workshops.book", time.Now())

	filter := bson.M{
		"_id":                           id,
		"availableSpots":                bson.M{"$gt": 0},
		"registeredParticipants.userId": bson.M{"$ne": p.UserID},
	}
	update := bson.M{
		"$push": bson.M{"registeredParticipants": p},
		"$inc":  bson.M{"availableSpots": -1},
	}

	var workshop models.Workshop
	err := r.col.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&workshop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The filter failed: figure out which precondition broke.
		return workshop, r.bookFailure(ctx, id, p.UserID)
	}
	if err != nil {
		return workshop, fmt.Errorf("workshops: book: %w", err)
	}
	return workshop, nil
}

// bookFailure distinguishes the three ways the booking filter can miss.
func (r *WorkshopRepository) bookFailure(ctx context.Context, id, userID primitive.ObjectID) error {
	var workshop models.Workshop
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&workshop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("workshops: book lookup: %w", err)
	}
	for _, p := range workshop.RegisteredParticipants {
		if p.UserID == userID {
			return ErrAlreadyRegistered
		}
	}
	return ErrNoSpots
}
