package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PromoCode is a percentage discount code with a bounded number of uses.
// usedCount never exceeds maxUses; the conditional use write enforces it.
type PromoCode struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code            string             `bson:"code" json:"code"`
	DiscountPercent int                `bson:"discountPercent" json:"discountPercent"`
	MaxUses         int                `bson:"maxUses" json:"maxUses"`
	UsedCount       int                `bson:"usedCount" json:"usedCount"`
	Active          bool               `bson:"active" json:"active"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt       *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// Expired reports whether the code has an expiry in the past.
func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// Discount returns the discount amount for a subtotal.
func (p *PromoCode) Discount(subtotal float64) float64 {
	return subtotal * float64(p.DiscountPercent) / 100
}
