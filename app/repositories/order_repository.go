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

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{col: database.Collection(database.ColOrders)}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBOp("orders.insert", time.Now())

	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

// All returns every order, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBOp("orders.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, findSortDesc("date"))
	if err != nil {
		return nil, fmt.Errorf("orders: find all: %w", err)
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode all: %w", err)
	}
	return orders, nil
}

// ByUser returns one user's orders, newest first.
func (r *OrderRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	defer metrics.ObserveDBOp("orders.byUser", time.Now())

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, findSortDesc("date"))
	if err != nil {
		return nil, fmt.Errorf("orders: find by user: %w", err)
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode by user: %w", err)
	}
	return orders, nil
}

// FindByID looks up an order by ObjectID.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer metrics.ObserveDBOp("orders.findByID", time.Now())

	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, ErrNotFound
	}
	if err != nil {
		return order, fmt.Errorf("orders: find by id: %w", err)
	}
	return order, nil
}

// Since returns orders placed at or after the cutoff. A zero cutoff means
// all time.
func (r *OrderRepository) Since(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	defer metrics.ObserveDBOp("orders.since", time.Now())

	filter := bson.M{}
	if !cutoff.IsZero() {
		filter["date"] = bson.M{"$gte": cutoff}
	}
	cur, err := r.col.Find(ctx, filter, findSortDesc("date"))
	if err != nil {
		return nil, fmt.Errorf("orders: find since: %w", err)
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode since: %w", err)
	}
	return orders, nil
}

// SetStatus updates an order's status and returns the updated document.
func (r *OrderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	defer metrics.ObserveDBOp("orders.setStatus", time.Now())

	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}}, returnAfter()).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, ErrNotFound
	}
	if err != nil {
		return order, fmt.Errorf("orders: set status: %w", err)
	}
	return order, nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveDBOp("orders.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("orders: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
