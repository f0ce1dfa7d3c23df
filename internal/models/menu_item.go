package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Menu categories shown on the storefront.
const (
	CategoryFood   = "food"
	CategorySnacks = "snacks"
)

type MenuItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        int64              `bson:"price" json:"price"`
	ImageURL     *string            `bson:"imageUrl,omitempty" json:"imageUrl"`
	Category     string             `bson:"category" json:"category"`
	IsNegotiable bool               `bson:"isNegotiable" json:"isNegotiable"`
	IsAvailable  bool               `bson:"isAvailable" json:"isAvailable"`
	Pinned       bool               `bson:"pinned" json:"pinned"`
	ViewCount    int64              `bson:"viewCount" json:"viewCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
