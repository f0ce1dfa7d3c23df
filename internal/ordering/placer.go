// Package ordering turns a guest cart and contact form into a persisted order.
package ordering

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
	"bitesquicky/internal/pricing"
	"bitesquicky/internal/realtime"
	"bitesquicky/internal/receipt"
)

// Store is the persistence the placer needs. CreateOrder must write the
// header and its items as one unit and assign their IDs; it reports a
// duplicate receipt code or idempotency key as an apperr conflict.
type Store interface {
	Cart(ctx context.Context, id string) (*models.Cart, error)
	ClearCart(ctx context.Context, id string) error
	PickupZone(ctx context.Context, id primitive.ObjectID) (models.PickupZone, error)
	DeliveryTiers(ctx context.Context) ([]models.DeliveryFeeTier, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	OrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	InsertNotification(ctx context.Context, n *models.Notification) error
}

const (
	maxCodeAttempts = 3
	placeTimeout    = 30 * time.Second
)

type ContactForm struct {
	ContactName         string
	ContactPhone        string
	PickupZoneID        string
	RoomNumber          string
	SpecialInstructions string
}

type Request struct {
	CartID         string
	Form           ContactForm
	IdempotencyKey string
}

// Receipt is the confirmation view-model. It is captured before the cart is
// cleared and stays valid afterwards.
type Receipt struct {
	Order    models.Order       `json:"order"`
	Items    []models.OrderItem `json:"items"`
	ZoneName string             `json:"zoneName"`
	Totals   pricing.Totals     `json:"totals"`
	Replayed bool               `json:"replayed"`
	Warnings []string           `json:"warnings,omitempty"`
}

func (r *Receipt) Document(brand receipt.Branding) receipt.Document {
	return receipt.Render(r.Order, r.Items, r.ZoneName, brand)
}

type Placer struct {
	store    Store
	events   realtime.Publisher
	now      func() time.Time
	random   io.Reader
	inflight singleflight.Group
}

type Option func(*Placer)

func WithClock(now func() time.Time) Option {
	return func(p *Placer) { p.now = now }
}

func WithRandom(r io.Reader) Option {
	return func(p *Placer) { p.random = r }
}

func WithPublisher(pub realtime.Publisher) Option {
	return func(p *Placer) { p.events = pub }
}

func NewPlacer(store Store, opts ...Option) *Placer {
	p := &Placer{
		store:  store,
		events: realtime.Discard{},
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Place runs one placement attempt. Concurrent calls for the same cart share
// a single attempt, so a double-clicked confirm button places one order. The
// shared attempt outlives the caller that started it, bounded by placeTimeout.
func (p *Placer) Place(ctx context.Context, req Request) (*Attempt, error) {
	v, _, _ := p.inflight.Do("cart:"+req.CartID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), placeTimeout)
		defer cancel()
		return p.place(ctx, req), nil
	})
	attempt := v.(*Attempt)
	return attempt, attempt.Err
}

func (p *Placer) place(ctx context.Context, req Request) *Attempt {
	log := logger.Area("ORDER")
	a := newAttempt()
	a.to(StateValidating)

	form := normalizeForm(req.Form)
	if err := validateRequired(form); err != nil {
		return a.fail(err)
	}
	zoneID, err := primitive.ObjectIDFromHex(form.PickupZoneID)
	if err != nil {
		return a.fail(apperr.Validation("pickupZoneId", "invalid pickup zone"))
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		if r, err := p.replay(ctx, key); err != nil {
			return a.fail(err)
		} else if r != nil {
			log.Info("idempotent replay", zap.String("receiptCode", r.Order.ReceiptCode))
			return a.succeed(r)
		}
	}

	cart, err := p.store.Cart(ctx, req.CartID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return a.fail(apperr.Validation("cart", "cart not found"))
		}
		return a.fail(err)
	}
	if cart.IsEmpty() {
		return a.fail(apperr.Validation("cart", apperr.ErrCartEmpty.Error()))
	}
	for _, line := range cart.Lines {
		if line.Quantity < 1 || line.Quantity > models.MaxLineQuantity || line.UnitPrice < 0 {
			return a.fail(apperr.Validation("cart", fmt.Sprintf("invalid cart line for %s", line.Title)))
		}
	}

	zone, err := p.store.PickupZone(ctx, zoneID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return a.fail(apperr.Validation("pickupZoneId", "unknown pickup zone"))
		}
		return a.fail(err)
	}
	if zone.RequiresRoomNumber && form.RoomNumber == "" {
		return a.fail(apperr.Validation("roomNumber", "room number is required for this zone"))
	}

	a.to(StateSubmitting)

	tiers, err := p.store.DeliveryTiers(ctx)
	if err != nil {
		return a.fail(err)
	}
	lines := cart.Snapshot()
	totals, err := pricing.CheckedTotals(lines, tiers)
	if err != nil {
		return a.fail(apperr.Validation("cart", "order total is out of range"))
	}
	now := p.now()

	order := models.Order{
		ContactName:    form.ContactName,
		ContactPhone:   form.ContactPhone,
		PickupZoneID:   zone.ID,
		DeliveryFee:    totals.DeliveryFee,
		TotalAmount:    totals.Total,
		Status:         models.OrderStatusPending,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if zone.RequiresRoomNumber {
		room := form.RoomNumber
		order.RoomNumber = &room
	}
	if form.SpecialInstructions != "" {
		note := form.SpecialInstructions
		order.SpecialInstructions = &note
	}

	var items []models.OrderItem
	for i := 0; ; i++ {
		code, err := receipt.GenerateReceiptCode(now, p.random)
		if err != nil {
			return a.fail(apperr.Persistence("receipt.code", apperr.CodeInternal, err))
		}
		order.ID = primitive.NilObjectID
		order.ReceiptCode = code
		items = buildItems(lines, now)

		err = p.store.CreateOrder(ctx, &order, items)
		if err == nil {
			break
		}
		if !apperr.IsConflict(err) {
			log.Error("order insert failed", zap.Error(err))
			return a.fail(err)
		}
		if key != "" {
			// Lost a race against a submission with the same key.
			if r, rerr := p.replay(ctx, key); rerr == nil && r != nil {
				return a.succeed(r)
			}
		}
		if i+1 >= maxCodeAttempts {
			log.Error("receipt code collisions exhausted", zap.Int("attempts", maxCodeAttempts))
			return a.fail(err)
		}
		log.Warn("receipt code collision, retrying", zap.String("receiptCode", code))
	}

	r := &Receipt{Order: order, Items: items, ZoneName: zone.Name, Totals: totals}

	note := &models.Notification{
		Type:      models.NotificationNewOrder,
		Message:   fmt.Sprintf("New order %s from %s - KES %d", order.ReceiptCode, order.ContactName, order.TotalAmount),
		OrderID:   &order.ID,
		CreatedAt: now,
	}
	if err := p.store.InsertNotification(ctx, note); err != nil {
		warn := apperr.SideEffect("notifications.insert", err)
		log.Warn("notification not recorded", zap.String("receiptCode", order.ReceiptCode), zap.Error(warn))
		r.Warnings = append(r.Warnings, "admin notification was not recorded")
	}

	if err := p.store.ClearCart(ctx, req.CartID); err != nil {
		warn := apperr.SideEffect("carts.clear", err)
		log.Warn("cart not cleared", zap.String("cartId", req.CartID), zap.Error(warn))
		r.Warnings = append(r.Warnings, "cart could not be cleared")
	}

	p.events.Publish(realtime.Event{Table: "orders", Type: realtime.EventInsert, ID: order.ID.Hex()})
	log.Info("order placed",
		zap.String("receiptCode", order.ReceiptCode),
		zap.Int("items", len(items)),
		zap.Int64("total", order.TotalAmount))

	return a.succeed(r)
}

// replay returns the receipt of an order already placed under key, or nil.
func (p *Placer) replay(ctx context.Context, key string) (*Receipt, error) {
	existing, err := p.store.OrderByIdempotencyKey(ctx, key)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	items, err := p.store.OrderItems(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	zoneName := ""
	if zone, err := p.store.PickupZone(ctx, existing.PickupZoneID); err == nil {
		zoneName = zone.Name
	}
	var subtotal int64
	for _, item := range items {
		subtotal += item.Subtotal
	}
	return &Receipt{
		Order:    *existing,
		Items:    items,
		ZoneName: zoneName,
		Totals:   pricing.Totals{Subtotal: subtotal, DeliveryFee: existing.DeliveryFee, Total: existing.TotalAmount},
		Replayed: true,
	}, nil
}

func buildItems(lines []models.CartLine, now time.Time) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ItemID:      line.ItemID,
			Title:       line.Title,
			Quantity:    line.Quantity,
			PriceAtTime: line.UnitPrice,
			Subtotal:    line.UnitPrice * int64(line.Quantity),
			CreatedAt:   now,
		})
	}
	return items
}

func normalizeForm(f ContactForm) ContactForm {
	return ContactForm{
		ContactName:         strings.TrimSpace(f.ContactName),
		ContactPhone:        strings.TrimSpace(f.ContactPhone),
		PickupZoneID:        strings.TrimSpace(f.PickupZoneID),
		RoomNumber:          strings.TrimSpace(f.RoomNumber),
		SpecialInstructions: strings.TrimSpace(f.SpecialInstructions),
	}
}

func validateRequired(f ContactForm) error {
	switch {
	case f.ContactName == "":
		return apperr.Validation("contactName", "name is required")
	case f.ContactPhone == "":
		return apperr.Validation("contactPhone", "phone number is required")
	case f.PickupZoneID == "":
		return apperr.Validation("pickupZoneId", "pickup zone is required")
	}
	return nil
}
