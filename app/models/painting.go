package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Painting is a catalog item sold through the shop.
type Painting struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Author      primitive.ObjectID `bson:"author,omitempty" json:"author,omitempty"`
	AuthorName  string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
