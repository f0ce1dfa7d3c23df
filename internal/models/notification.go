package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const NotificationNewOrder = "new_order"

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type      string              `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	OrderID   *primitive.ObjectID `bson:"orderId" json:"orderId"`
	Read      bool                `bson:"read" json:"read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
