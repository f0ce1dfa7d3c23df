package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses are locked once reached.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether an admin may move an order from s to next.
// Re-applying the current status is always allowed and is a no-op.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

// OrderItem snapshots a cart line at submission time. PriceAtTime and Title
// are copied so later menu edits do not rewrite history.
type OrderItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     primitive.ObjectID `bson:"orderId" json:"orderId"`
	ItemID      primitive.ObjectID `bson:"itemId" json:"itemId"`
	Title       string             `bson:"title" json:"title"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	PriceAtTime int64              `bson:"priceAtTime" json:"priceAtTime"`
	Subtotal    int64              `bson:"subtotal" json:"subtotal"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Order defines the persisted order header.
type Order struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiptCode         string             `bson:"receiptCode" json:"receiptCode"`
	ContactName         string             `bson:"contactName" json:"contactName"`
	ContactPhone        string             `bson:"contactPhone" json:"contactPhone"`
	PickupZoneID        primitive.ObjectID `bson:"pickupZoneId" json:"pickupZoneId"`
	RoomNumber          *string            `bson:"roomNumber" json:"roomNumber"`
	SpecialInstructions *string            `bson:"specialInstructions" json:"specialInstructions"`
	DeliveryFee         int64              `bson:"deliveryFee" json:"deliveryFee"`
	TotalAmount         int64              `bson:"totalAmount" json:"totalAmount"`
	Status              OrderStatus        `bson:"status" json:"status"`
	IdempotencyKey      string             `bson:"idempotencyKey,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Subtotal is the item total before the delivery fee.
func (o Order) Subtotal() int64 {
	return o.TotalAmount - o.DeliveryFee
}
