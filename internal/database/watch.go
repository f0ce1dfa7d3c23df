package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"bitesquicky/internal/logger"
	"bitesquicky/internal/realtime"
)

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

func eventFromChange(table string, ch changeEvent) (realtime.Event, bool) {
	var t realtime.EventType
	switch ch.OperationType {
	case "insert":
		t = realtime.EventInsert
	case "update", "replace":
		t = realtime.EventUpdate
	case "delete":
		t = realtime.EventDelete
	default:
		return realtime.Event{}, false
	}
	return realtime.Event{Table: table, Type: t, ID: ch.DocumentKey.ID.Hex()}, true
}

// WatchOrders forwards order changes made by any process to pub until ctx is
// cancelled. It needs a replica set. A broken stream is reopened after a pause.
func (s *Store) WatchOrders(ctx context.Context, pub realtime.Publisher) {
	log := logger.Area("WATCH")
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}}}}},
	}

	for ctx.Err() == nil {
		stream, err := s.col(colOrders).Watch(ctx, pipeline, options.ChangeStream())
		if err != nil {
			log.Warn("order change stream unavailable", zap.Error(err))
			if !sleepCtx(ctx, 10*time.Second) {
				return
			}
			continue
		}

		for stream.Next(ctx) {
			var ch changeEvent
			if err := stream.Decode(&ch); err != nil {
				log.Warn("undecodable change event", zap.Error(err))
				continue
			}
			if ev, ok := eventFromChange(colOrders, ch); ok {
				pub.Publish(ev)
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Warn("order change stream closed", zap.Error(err))
		}
		_ = stream.Close(context.Background())
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
