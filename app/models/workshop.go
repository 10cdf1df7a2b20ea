package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is one registered attendee of a workshop.
type Participant struct {
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	RegisteredAt time.Time          `bson:"registeredAt" json:"registeredAt"`
}

// Workshop is a bookable master class with a fixed number of seats.
// availableSpots plus the number of registered participants stays constant;
// the booking write keeps availableSpots from ever going negative.
type Workshop struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                  string             `bson:"title" json:"title"`
	Description            string             `bson:"description,omitempty" json:"description,omitempty"`
	Date                   time.Time          `bson:"date" json:"date"`
	Duration               string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Price                  float64            `bson:"price" json:"price"`
	AvailableSpots         int                `bson:"availableSpots" json:"availableSpots"`
	Image                  string             `bson:"image,omitempty" json:"image,omitempty"`
	Location               string             `bson:"location,omitempty" json:"location,omitempty"`
	Author                 primitive.ObjectID `bson:"author,omitempty" json:"author,omitempty"`
	AuthorName             string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
	RegisteredParticipants []Participant      `bson:"registeredParticipants" json:"registeredParticipants"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
}
