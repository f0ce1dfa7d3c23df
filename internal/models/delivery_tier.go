package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryFeeTier charges Fee for subtotals in [MinAmount, MaxAmount].
// A nil MaxAmount leaves the range open-ended.
type DeliveryFeeTier struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MinAmount int64              `bson:"minAmount" json:"minAmount"`
	MaxAmount *int64             `bson:"maxAmount" json:"maxAmount"`
	Fee       int64              `bson:"fee" json:"fee"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Contains reports whether subtotal falls inside the tier, both ends inclusive.
func (t DeliveryFeeTier) Contains(subtotal int64) bool {
	if subtotal < t.MinAmount {
		return false
	}
	return t.MaxAmount == nil || subtotal <= *t.MaxAmount
}
