package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyProfit is written when an admin closes the day. Date is YYYY-MM-DD.
type DailyProfit struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date        string             `bson:"date" json:"date"`
	TotalProfit int64              `bson:"totalProfit" json:"totalProfit"`
	TotalOrders int64              `bson:"totalOrders" json:"totalOrders"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
