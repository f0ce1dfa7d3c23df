package handlers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bitesquicky/internal/database"
	"bitesquicky/internal/models"
	"bitesquicky/internal/ordering"
)

// The interfaces below are the slices of *database.Store each handler group uses.

type MenuStore interface {
	pinger
	ListMenuItems(ctx context.Context, q database.MenuQuery) ([]models.MenuItem, error)
	MenuItem(ctx context.Context, id string) (models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, id string, set bson.M) (models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) (models.MenuItem, error)
	IncrementViewCount(ctx context.Context, id string) error
}

type ZoneStore interface {
	PickupZones(ctx context.Context) ([]models.PickupZone, error)
	CreatePickupZone(ctx context.Context, zone *models.PickupZone) error
	UpdatePickupZone(ctx context.Context, id string, set bson.M) (models.PickupZone, error)
	DeletePickupZone(ctx context.Context, id string) error
}

type TierStore interface {
	DeliveryTiers(ctx context.Context) ([]models.DeliveryFeeTier, error)
	CreateDeliveryTier(ctx context.Context, tier *models.DeliveryFeeTier) error
	ReplaceDeliveryTier(ctx context.Context, id string, tier *models.DeliveryFeeTier) error
	DeleteDeliveryTier(ctx context.Context, id string) error
}

type CartStore interface {
	NewCart(ctx context.Context) (*models.Cart, error)
	Cart(ctx context.Context, id string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	MenuItem(ctx context.Context, id string) (models.MenuItem, error)
	DeliveryTiers(ctx context.Context) ([]models.DeliveryFeeTier, error)
}

type OrderStore interface {
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	OrderByReceipt(ctx context.Context, code, phone string) (*models.Order, error)
	OrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, f database.OrderFilter) ([]models.Order, int64, error)
	TransitionOrder(ctx context.Context, id string, next models.OrderStatus) (*models.Order, bool, error)
	DeleteOrder(ctx context.Context, id string) error
	PickupZone(ctx context.Context, id primitive.ObjectID) (models.PickupZone, error)
	PickupZones(ctx context.Context) ([]models.PickupZone, error)
}

type DashboardStore interface {
	Stats(ctx context.Context) (database.OrderStats, error)
	CloseDay(ctx context.Context, date string) (models.DailyProfit, error)
	DailyProfits(ctx context.Context, limit int64) ([]models.DailyProfit, error)
	Notifications(ctx context.Context, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, id string) (int64, error)
}

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type BlobStore interface {
	Upload(bucket, name string, r io.Reader) (string, error)
	Delete(publicURL string) error
}

type OrderPlacer interface {
	Place(ctx context.Context, req ordering.Request) (*ordering.Attempt, error)
}

var (
	_ MenuStore      = (*database.Store)(nil)
	_ ZoneStore      = (*database.Store)(nil)
	_ TierStore      = (*database.Store)(nil)
	_ CartStore      = (*database.Store)(nil)
	_ OrderStore     = (*database.Store)(nil)
	_ DashboardStore = (*database.Store)(nil)
	_ AdminStore     = (*database.Store)(nil)
	_ OrderPlacer    = (*ordering.Placer)(nil)
	_ ordering.Store = (*database.Store)(nil)
)
