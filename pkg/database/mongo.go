// Package database owns the shared MongoDB connection and the index
// bootstrap that the data model relies on.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arthomesoni/arthome/config"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Collection names used across the repositories.
const (
	ColUsers      = "users"
	ColPaintings  = "paintings"
	ColWorkshops  = "workshops"
	ColCarts      = "carts"
	ColOrders     = "orders"
	ColPromoCodes = "promocodes"
	ColAppLogs    = "app_logs"
)

// Connect opens the MongoDB connection and configures the pool.
// Returns an error instead of calling log.Fatal so the caller can
// shut down gracefully.
func Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(config.MongoURI()).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	Client = client
	DB = client.Database(config.MongoDatabase())
	return nil
}

// Disconnect closes the MongoDB connection.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	if err := Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	Client, DB = nil, nil
	return nil
}

// Collection returns a handle to a named collection on the shared database.
// Before Connect it returns nil, which is fine for callers that only build
// structure (the route:list command) and never issue queries.
func Collection(name string) *mongo.Collection {
	if DB == nil {
		return nil
	}
	return DB.Collection(name)
}

// indexSpec pairs a collection with the indexes it needs.
type indexSpec struct {
	col     string
	indexes []mongo.IndexModel
}

// indexSpecs returns the indexes the application depends on. Field names must
// match the bson tags on the models; orders sort and window on `date`.
func indexSpecs() []indexSpec {
	unique := options.Index().SetUnique(true)

	return []indexSpec{
		{
			col: ColUsers,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			},
		},
		{
			col: ColPromoCodes,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
			},
		},
		{
			col: ColCarts,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
			},
		},
		{
			col: ColOrders,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "userId", Value: 1}}},
				{Keys: bson.D{{Key: "date", Value: -1}}},
			},
		},
		{
			col: ColWorkshops,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "date", Value: 1}}},
			},
		},
		{
			col: ColAppLogs,
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "time", Value: -1}}},
			},
		},
	}
}

// EnsureIndexes creates the indexes the application depends on. Creating an
// index that already exists is a no-op on the server, so this is safe to run
// on every boot.
func EnsureIndexes(ctx context.Context) error {
	for _, s := range indexSpecs() {
		if _, err := DB.Collection(s.col).Indexes().CreateMany(ctx, s.indexes); err != nil {
			return fmt.Errorf("database: ensure indexes on %s: %w", s.col, err)
		}
	}

	return nil
}
