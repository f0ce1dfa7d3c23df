package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/models"
)

// CreateOrder writes the header and its items as one unit. Without
// transactions the header is removed again when the items insert fails; if
// that delete fails too the error is a partial failure.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	const op = "orders.create"

	order.ID = primitive.NewObjectID()
	docs := make([]interface{}, len(items))
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].OrderID = order.ID
		docs[i] = items[i]
	}

	ctx, cancel := context.WithTimeout(ctx, 2*opTimeout)
	defer cancel()

	if s.transactions {
		err := s.withTx(ctx, func(ctx context.Context) error {
			if _, err := s.col(colOrders).InsertOne(ctx, order); err != nil {
				return err
			}
			if len(docs) == 0 {
				return nil
			}
			_, err := s.col(colOrderItems).InsertMany(ctx, docs)
			return err
		})
		return classify(op, err)
	}

	if _, err := s.col(colOrders).InsertOne(ctx, order); err != nil {
		return classify(op, err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.col(colOrderItems).InsertMany(ctx, docs); err != nil {
		if _, delErr := s.col(colOrders).DeleteOne(ctx, bson.M{"_id": order.ID}); delErr != nil {
			return apperr.Partial(op, fmt.Errorf("order %s kept without items: insert items: %v: remove header: %w", order.ReceiptCode, err, delErr))
		}
		return classify(op, err)
	}
	return nil
}

func (s *Store) findOrder(ctx context.Context, op string, filter bson.M) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	if err := s.col(colOrders).FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, classify(op, err)
	}
	return &order, nil
}

func (s *Store) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return s.findOrder(ctx, "orders.by_key", bson.M{"idempotencyKey": key})
}

func (s *Store) OrderByID(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := parseID("orders.get", rawID)
	if err != nil {
		return nil, err
	}
	return s.findOrder(ctx, "orders.get", bson.M{"_id": id})
}

// OrderByReceipt looks an order up by its receipt code and the phone it was
// placed with, so a code alone does not expose contact details.
func (s *Store) OrderByReceipt(ctx context.Context, code, phone string) (*models.Order, error) {
	return s.findOrder(ctx, "orders.by_receipt", bson.M{"receiptCode": code, "contactPhone": phone})
}

func (s *Store) OrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.col(colOrderItems).Find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify("orders.items", err)
	}
	defer cursor.Close(ctx)

	items := []models.OrderItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, classify("orders.items", err)
	}
	return items, nil
}

type OrderFilter struct {
	Status models.OrderStatus
	Phone  string
	Search string
	Limit  int64
	Skip   int64
}

func orderFilter(f OrderFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Phone != "" {
		filter["contactPhone"] = f.Phone
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"receiptCode": pattern},
			bson.M{"contactName": pattern},
			bson.M{"contactPhone": pattern},
		}
	}
	return filter
}

// ListOrders returns matching orders newest first and the total match count.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := orderFilter(f)
	total, err := s.col(colOrders).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, classify("orders.list", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	cursor, err := s.col(colOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, classify("orders.list", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, classify("orders.list", err)
	}
	return orders, total, nil
}

// TransitionOrder moves an order to next. Re-applying the current status
// returns the order unchanged with changed=false. The update is guarded on the
// status that was read, so a concurrent change surfaces as a conflict.
func (s *Store) TransitionOrder(ctx context.Context, rawID string, next models.OrderStatus) (*models.Order, bool, error) {
	const op = "orders.status"

	order, err := s.OrderByID(ctx, rawID)
	if err != nil {
		return nil, false, err
	}
	if order.Status == next {
		return order, false, nil
	}
	if !order.Status.CanTransition(next) {
		return nil, false, &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeConflict,
			Op:      op,
			Field:   "status",
			Message: fmt.Sprintf("cannot move a %s order to %s", order.Status, next),
			Err:     apperr.ErrStatusTransition,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated models.Order
	err = s.col(colOrders).FindOneAndUpdate(ctx,
		bson.M{"_id": order.ID, "status": order.Status},
		bson.M{"$set": bson.M{"status": next, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, apperr.Persistence(op, apperr.CodeConflict, fmt.Errorf("order %s changed concurrently", order.ReceiptCode))
	}
	if err != nil {
		return nil, false, classify(op, err)
	}
	return &updated, true, nil
}

// DeleteOrder removes the order with its items and notifications.
func (s *Store) DeleteOrder(ctx context.Context, rawID string) error {
	const op = "orders.delete"
	id, err := parseID(op, rawID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*opTimeout)
	defer cancel()

	err = s.withTx(ctx, func(ctx context.Context) error {
		res, err := s.col(colOrders).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperr.NotFound(op, "order not found")
		}
		if _, err := s.col(colOrderItems).DeleteMany(ctx, bson.M{"orderId": id}); err != nil {
			return err
		}
		_, err = s.col(colNotifications).DeleteMany(ctx, bson.M{"orderId": id})
		return err
	})
	return classify(op, err)
}

type OrderStats struct {
	Pending     int64 `json:"pending"`
	Preparing   int64 `json:"preparing"`
	Delivered   int64 `json:"delivered"`
	Cancelled   int64 `json:"cancelled"`
	Total       int64 `json:"total"`
	DailyProfit int64 `json:"dailyProfit"`
}

type statusBucket struct {
	Status models.OrderStatus `bson:"_id"`
	Count  int64              `bson:"count"`
	Fees   int64              `bson:"fees"`
}

var statsPipeline = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$status"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "fees", Value: bson.D{{Key: "$sum", Value: "$deliveryFee"}}},
	}}},
}

// foldStats sums status buckets. Profit is the delivery fees of delivered orders.
func foldStats(buckets []statusBucket) OrderStats {
	var st OrderStats
	for _, b := range buckets {
		st.Total += b.Count
		switch b.Status {
		case models.OrderStatusPending:
			st.Pending = b.Count
		case models.OrderStatusPreparing:
			st.Preparing = b.Count
		case models.OrderStatusDelivered:
			st.Delivered = b.Count
			st.DailyProfit = b.Fees
		case models.OrderStatusCancelled:
			st.Cancelled = b.Count
		}
	}
	return st
}

func (s *Store) Stats(ctx context.Context) (OrderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.col(colOrders).Aggregate(ctx, statsPipeline)
	if err != nil {
		return OrderStats{}, classify("orders.stats", err)
	}
	defer cursor.Close(ctx)

	var buckets []statusBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return OrderStats{}, classify("orders.stats", err)
	}
	return foldStats(buckets), nil
}

// CloseDay records the day's profit and delivered-order count under date,
// then clears all orders with their items and notifications. Closing twice on
// the same date overwrites the record.
func (s *Store) CloseDay(ctx context.Context, date string) (models.DailyProfit, error) {
	const op = "orders.close_day"

	var record models.DailyProfit
	err := s.withTx(ctx, func(ctx context.Context) error {
		stats, err := s.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.Total == 0 {
			return apperr.Validation("orders", "no orders to clear")
		}

		now := time.Now().UTC()
		err = s.col(colDailyProfits).FindOneAndUpdate(ctx,
			bson.M{"date": date},
			bson.M{"$set": bson.M{
				"totalProfit": stats.DailyProfit,
				"totalOrders": stats.Delivered,
				"updatedAt":   now,
			}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&record)
		if err != nil {
			return err
		}

		if _, err := s.col(colOrderItems).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
		if _, err := s.col(colNotifications).DeleteMany(ctx, bson.M{"orderId": bson.M{"$ne": nil}}); err != nil {
			return err
		}
		_, err = s.col(colOrders).DeleteMany(ctx, bson.M{})
		return err
	})
	if err != nil {
		return models.DailyProfit{}, classify(op, err)
	}
	return record, nil
}

func (s *Store) DailyProfits(ctx context.Context, limit int64) ([]models.DailyProfit, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.col(colDailyProfits).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify("profits.list", err)
	}
	defer cursor.Close(ctx)

	profits := []models.DailyProfit{}
	if err := cursor.All(ctx, &profits); err != nil {
		return nil, classify("profits.list", err)
	}
	return profits, nil
}
