package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/models"
)

func (s *Store) NewCart(ctx context.Context) (*models.Cart, error) {
	now := time.Now().UTC()
	cart := &models.Cart{
		ID:        uuid.NewString(),
		Lines:     []models.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.col(colCarts).InsertOne(ctx, cart); err != nil {
		return nil, classify("carts.create", err)
	}
	return cart, nil
}

func (s *Store) Cart(ctx context.Context, id string) (*models.Cart, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("carts.get", "cart not found")
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var cart models.Cart
	if err := s.col(colCarts).FindOne(ctx, bson.M{"_id": id}).Decode(&cart); err != nil {
		return nil, classify("carts.get", err)
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return &cart, nil
}

// SaveCart replaces the stored lines and refreshes the TTL clock.
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cart.UpdatedAt = time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}
	_, err := s.col(colCarts).ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart, options.Replace().SetUpsert(true))
	return classify("carts.save", err)
}

func (s *Store) ClearCart(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.col(colCarts).UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"lines": []models.CartLine{}, "updatedAt": time.Now().UTC()},
	})
	return classify("carts.clear", err)
}
