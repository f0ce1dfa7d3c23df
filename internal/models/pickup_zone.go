package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickupZone is a campus drop-off point. Some zones (hostels) need a room number.
type PickupZone struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	RequiresRoomNumber bool               `bson:"requiresRoomNumber" json:"requiresRoomNumber"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}
