package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/models"
)

// tierSort is the order fee resolution walks tiers in; first match wins.
var tierSort = bson.D{{Key: "minAmount", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) DeliveryTiers(ctx context.Context) ([]models.DeliveryFeeTier, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.col(colDeliveryTiers).Find(ctx, bson.M{}, options.Find().SetSort(tierSort))
	if err != nil {
		return nil, classify("tiers.list", err)
	}
	defer cursor.Close(ctx)

	tiers := []models.DeliveryFeeTier{}
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, classify("tiers.list", err)
	}
	return tiers, nil
}

func (s *Store) CreateDeliveryTier(ctx context.Context, tier *models.DeliveryFeeTier) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	tier.ID = primitive.NewObjectID()
	tier.CreatedAt = now
	tier.UpdatedAt = now
	_, err := s.col(colDeliveryTiers).InsertOne(ctx, tier)
	return classify("tiers.create", err)
}

func (s *Store) ReplaceDeliveryTier(ctx context.Context, rawID string, tier *models.DeliveryFeeTier) error {
	id, err := parseID("tiers.update", rawID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tier.UpdatedAt = time.Now().UTC()
	res, err := s.col(colDeliveryTiers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"minAmount": tier.MinAmount,
		"maxAmount": tier.MaxAmount,
		"fee":       tier.Fee,
		"updatedAt": tier.UpdatedAt,
	}})
	if err != nil {
		return classify("tiers.update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("tiers.update", "delivery tier not found")
	}
	tier.ID = id
	return nil
}

func (s *Store) DeleteDeliveryTier(ctx context.Context, rawID string) error {
	id, err := parseID("tiers.delete", rawID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col(colDeliveryTiers).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("tiers.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("tiers.delete", "delivery tier not found")
	}
	return nil
}
