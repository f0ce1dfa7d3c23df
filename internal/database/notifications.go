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

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.col(colNotifications).InsertOne(ctx, n)
	return classify("notifications.create", err)
}

func (s *Store) Notifications(ctx context.Context, unreadOnly bool, limit int64) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.col(colNotifications).Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("notifications.list", err)
	}
	defer cursor.Close(ctx)

	list := []models.Notification{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, classify("notifications.list", err)
	}
	return list, nil
}

// MarkNotificationsRead marks one notification, or all of them when rawID is empty.
func (s *Store) MarkNotificationsRead(ctx context.Context, rawID string) (int64, error) {
	filter := bson.M{"read": false}
	if rawID != "" {
		id, err := parseID("notifications.read", rawID)
		if err != nil {
			return 0, err
		}
		filter = bson.M{"_id": id}
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col(colNotifications).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, classify("notifications.read", err)
	}
	if rawID != "" && res.MatchedCount == 0 {
		return 0, apperr.NotFound("notifications.read", "notification not found")
	}
	return res.ModifiedCount, nil
}
