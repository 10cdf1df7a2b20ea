package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart item types.
const (
	ItemTypePainting = "Painting"
	ItemTypeWorkshop = "Workshop"
)

// ValidItemType reports whether t is a known cart item type.
func ValidItemType(t string) bool {
	return t == ItemTypePainting || t == ItemTypeWorkshop
}

// CartItem is one line in a cart. Price and title are snapshotted at add time
// so later catalog edits don't change what the customer saw.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	ItemType  string             `bson:"itemType" json:"itemType"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// Cart holds one user's shopping cart. One document per user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Total returns the cart subtotal (Σ price·quantity).
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
