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

func (s *Store) PickupZones(ctx context.Context) ([]models.PickupZone, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.col(colPickupZones).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, classify("zones.list", err)
	}
	defer cursor.Close(ctx)

	zones := []models.PickupZone{}
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, classify("zones.list", err)
	}
	return zones, nil
}

func (s *Store) PickupZone(ctx context.Context, id primitive.ObjectID) (models.PickupZone, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var zone models.PickupZone
	if err := s.col(colPickupZones).FindOne(ctx, bson.M{"_id": id}).Decode(&zone); err != nil {
		return models.PickupZone{}, classify("zones.get", err)
	}
	return zone, nil
}

func (s *Store) CreatePickupZone(ctx context.Context, zone *models.PickupZone) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	zone.ID = primitive.NewObjectID()
	zone.CreatedAt = time.Now().UTC()
	_, err := s.col(colPickupZones).InsertOne(ctx, zone)
	return classify("zones.create", err)
}

func (s *Store) UpdatePickupZone(ctx context.Context, rawID string, set bson.M) (models.PickupZone, error) {
	id, err := parseID("zones.update", rawID)
	if err != nil {
		return models.PickupZone{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var zone models.PickupZone
	err = s.col(colPickupZones).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&zone)
	if err != nil {
		return models.PickupZone{}, classify("zones.update", err)
	}
	return zone, nil
}

func (s *Store) DeletePickupZone(ctx context.Context, rawID string) error {
	id, err := parseID("zones.delete", rawID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col(colPickupZones).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("zones.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("zones.delete", "pickup zone not found")
	}
	return nil
}
