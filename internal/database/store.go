// Package database is the MongoDB persistence layer for menus, carts, orders
// and the admin dashboard.
package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"bitesquicky/internal/apperr"
)

const (
	colMenuItems     = "menu_items"
	colPickupZones   = "pickup_zones"
	colDeliveryTiers = "delivery_fee_tiers"
	colOrders        = "orders"
	colOrderItems    = "order_items"
	colNotifications = "notifications"
	colDailyProfits  = "daily_profits"
	colCarts         = "carts"
	colAdmins        = "admins"
)

// Mongo server error codes that mean the connected user may not run the command.
var permissionCodes = []int{13, 8000}

const opTimeout = 5 * time.Second

type Store struct {
	db           *mongo.Database
	transactions bool
}

// New wraps db. With transactions off, multi-document writes fall back to
// sequential writes with a compensating delete.
func New(db *mongo.Database, transactions bool) *Store {
	return &Store{db: db, transactions: transactions}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Client().Ping(checkCtx, readpref.Primary())
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// withTx runs fn inside a transaction when enabled, otherwise directly.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func parseID(op, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeInvalid, Op: op, Field: "id", Err: apperr.ErrInvalidID}
	}
	return id, nil
}

// classify maps driver errors onto apperr codes using server error codes and
// driver predicates.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return &apperr.Error{Kind: apperr.KindPersistence, Code: apperr.CodeNotFound, Op: op, Message: "not found", Err: err}
	case mongo.IsDuplicateKeyError(err):
		return apperr.Persistence(op, apperr.CodeConflict, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return apperr.Persistence(op, apperr.CodeUnavailable, err)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for _, code := range permissionCodes {
			if serverErr.HasErrorCode(code) {
				return apperr.Persistence(op, apperr.CodePermissionDenied, err)
			}
		}
	}
	return apperr.Persistence(op, apperr.CodeInternal, err)
}
