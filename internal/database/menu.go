package database

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/models"
)

// Storefront sort orders. Pinned items always come first.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortPopular   = "popular"
)

type MenuQuery struct {
	Category      string
	Sort          string
	AvailableOnly bool
	Search        string
}

func menuFilter(q MenuQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.AvailableOnly {
		filter["isAvailable"] = true
	}
	if q.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	return filter
}

func menuSort(sort string) bson.D {
	order := bson.D{{Key: "pinned", Value: -1}}
	switch sort {
	case SortPriceLow:
		order = append(order, bson.E{Key: "price", Value: 1})
	case SortPriceHigh:
		order = append(order, bson.E{Key: "price", Value: -1})
	case SortPopular:
		order = append(order, bson.E{Key: "viewCount", Value: -1})
	}
	return append(order, bson.E{Key: "createdAt", Value: -1}, bson.E{Key: "_id", Value: -1})
}

func (s *Store) ListMenuItems(ctx context.Context, q MenuQuery) ([]models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.col(colMenuItems).Find(ctx, menuFilter(q), options.Find().SetSort(menuSort(q.Sort)))
	if err != nil {
		return nil, classify("menu.list", err)
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, classify("menu.list", err)
	}
	return items, nil
}

func (s *Store) MenuItem(ctx context.Context, rawID string) (models.MenuItem, error) {
	id, err := parseID("menu.get", rawID)
	if err != nil {
		return models.MenuItem{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var item models.MenuItem
	if err := s.col(colMenuItems).FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return models.MenuItem{}, classify("menu.get", err)
	}
	return item, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := s.col(colMenuItems).InsertOne(ctx, item)
	return classify("menu.create", err)
}

// UpdateMenuItem applies set and returns the updated item.
func (s *Store) UpdateMenuItem(ctx context.Context, rawID string, set bson.M) (models.MenuItem, error) {
	id, err := parseID("menu.update", rawID)
	if err != nil {
		return models.MenuItem{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	var item models.MenuItem
	err = s.col(colMenuItems).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&item)
	if err != nil {
		return models.MenuItem{}, classify("menu.update", err)
	}
	return item, nil
}

// DeleteMenuItem removes the item and returns it so the caller can drop its image.
func (s *Store) DeleteMenuItem(ctx context.Context, rawID string) (models.MenuItem, error) {
	id, err := parseID("menu.delete", rawID)
	if err != nil {
		return models.MenuItem{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var item models.MenuItem
	if err := s.col(colMenuItems).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return models.MenuItem{}, classify("menu.delete", err)
	}
	return item, nil
}

func (s *Store) IncrementViewCount(ctx context.Context, rawID string) error {
	id, err := parseID("menu.view", rawID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.col(colMenuItems).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return classify("menu.view", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("menu.view", "menu item not found")
	}
	return nil
}
