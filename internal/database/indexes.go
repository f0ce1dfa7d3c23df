package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"bitesquicky/internal/logger"
)

// Idle guest carts are dropped by the TTL monitor after this long.
const cartTTL = 7 * 24 * time.Hour

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{colOrders, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "receiptCode", Value: 1}},
				Options: options.Index().SetName("receiptCode_unique").SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "idempotencyKey", Value: 1}},
				Options: options.Index().
					SetName("idempotencyKey_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{
						"idempotencyKey": bson.M{"$type": "string"},
					}),
			},
			{
				Keys:    bson.D{{Key: "contactPhone", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("contactPhone_createdAt"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("status_createdAt"),
			},
		}},
		{colOrderItems, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "orderId", Value: 1}},
				Options: options.Index().SetName("orderId_index"),
			},
		}},
		{colDailyProfits, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "date", Value: 1}},
				Options: options.Index().SetName("date_unique").SetUnique(true),
			},
		}},
		{colAdmins, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		}},
		{colCarts, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "updatedAt", Value: 1}},
				Options: options.Index().SetName("updatedAt_ttl").SetExpireAfterSeconds(int32(cartTTL.Seconds())),
			},
		}},
		{colMenuItems, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "isAvailable", Value: 1}},
				Options: options.Index().SetName("category_available"),
			},
		}},
	}
}

// EnsureIndexes creates every index the store relies on. It keeps going after
// a failure and returns the first error.
func EnsureIndexes(db *mongo.Database) error {
	log := logger.Area("DB")
	var firstErr error
	for _, plan := range indexPlan() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
		cancel()
		if err != nil {
			log.Warn("index creation failed", zap.String("collection", plan.collection), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Info("indexes ready", zap.String("collection", plan.collection), zap.Strings("names", names))
	}
	return firstErr
}
