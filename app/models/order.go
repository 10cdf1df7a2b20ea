package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses, as the storefront displays them.
const (
	StatusProcessing = "В обработке"
	StatusConfirmed  = "Подтвержден"
	StatusDelivered  = "Доставлен"
	StatusCompleted  = "Завершен"
	StatusCancelled  = "Отменен"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusConfirmed, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized snapshot of a purchased line.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	ItemType  string             `bson:"itemType,omitempty" json:"itemType,omitempty"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// Order is a placed order. Items are a snapshot taken at checkout; placing
// an order deliberately does not adjust painting stock or workshop seats.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail string             `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string             `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	UserID        primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
}
