package handlers

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/database"
	"bitesquicky/internal/models"
	"bitesquicky/internal/realtime"
)

type fakeStore struct {
	mu      sync.Mutex
	pingErr error
	failErr error

	menu          map[primitive.ObjectID]models.MenuItem
	zones         map[primitive.ObjectID]models.PickupZone
	tiers         []models.DeliveryFeeTier
	carts         map[string]*models.Cart
	orders        map[primitive.ObjectID]*models.Order
	items         map[primitive.ObjectID][]models.OrderItem
	notifications []models.Notification
	admins        map[string]*models.Admin
	profits       []models.DailyProfit
	closedDates   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		menu:   map[primitive.ObjectID]models.MenuItem{},
		zones:  map[primitive.ObjectID]models.PickupZone{},
		carts:  map[string]*models.Cart{},
		orders: map[primitive.ObjectID]*models.Order{},
		items:  map[primitive.ObjectID][]models.OrderItem{},
		admins: map[string]*models.Admin{},
	}
}

func notFound(op string) error { return apperr.NotFound(op, "not found") }

func (f *fakeStore) id(op, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return id, &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeInvalid, Op: op, Field: "id", Err: apperr.ErrInvalidID}
	}
	return id, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) ListMenuItems(_ context.Context, q database.MenuQuery) ([]models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	out := []models.MenuItem{}
	for _, item := range f.menu {
		if q.AvailableOnly && !item.IsAvailable {
			continue
		}
		if q.Category != "" && item.Category != q.Category {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (f *fakeStore) MenuItem(_ context.Context, raw string) (models.MenuItem, error) {
	id, err := f.id("menu.get", raw)
	if err != nil {
		return models.MenuItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.menu[id]
	if !ok {
		return models.MenuItem{}, notFound("menu.get")
	}
	return item, nil
}

func (f *fakeStore) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = primitive.NewObjectID()
	f.menu[item.ID] = *item
	return nil
}

func (f *fakeStore) UpdateMenuItem(_ context.Context, raw string, set bson.M) (models.MenuItem, error) {
	id, err := f.id("menu.update", raw)
	if err != nil {
		return models.MenuItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.menu[id]
	if !ok {
		return models.MenuItem{}, notFound("menu.update")
	}
	if v, ok := set["title"].(string); ok {
		item.Title = v
	}
	if v, ok := set["price"].(int64); ok {
		item.Price = v
	}
	if v, ok := set["isAvailable"].(bool); ok {
		item.IsAvailable = v
	}
	if v, ok := set["imageUrl"]; ok {
		if s, isString := v.(string); isString {
			item.ImageURL = &s
		} else {
			item.ImageURL = nil
		}
	}
	f.menu[id] = item
	return item, nil
}

func (f *fakeStore) DeleteMenuItem(_ context.Context, raw string) (models.MenuItem, error) {
	id, err := f.id("menu.delete", raw)
	if err != nil {
		return models.MenuItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.menu[id]
	if !ok {
		return models.MenuItem{}, notFound("menu.delete")
	}
	delete(f.menu, id)
	return item, nil
}

func (f *fakeStore) IncrementViewCount(_ context.Context, raw string) error {
	id, err := f.id("menu.view", raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.menu[id]
	if !ok {
		return notFound("menu.view")
	}
	item.ViewCount++
	f.menu[id] = item
	return nil
}

func (f *fakeStore) PickupZones(context.Context) ([]models.PickupZone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PickupZone{}
	for _, z := range f.zones {
		out = append(out, z)
	}
	return out, nil
}

func (f *fakeStore) PickupZone(_ context.Context, id primitive.ObjectID) (models.PickupZone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zones[id]
	if !ok {
		return models.PickupZone{}, notFound("zones.get")
	}
	return z, nil
}

func (f *fakeStore) CreatePickupZone(_ context.Context, zone *models.PickupZone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	zone.ID = primitive.NewObjectID()
	f.zones[zone.ID] = *zone
	return nil
}

func (f *fakeStore) UpdatePickupZone(_ context.Context, raw string, set bson.M) (models.PickupZone, error) {
	id, err := f.id("zones.update", raw)
	if err != nil {
		return models.PickupZone{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zones[id]
	if !ok {
		return models.PickupZone{}, notFound("zones.update")
	}
	if v, ok := set["name"].(string); ok {
		z.Name = v
	}
	if v, ok := set["requiresRoomNumber"].(bool); ok {
		z.RequiresRoomNumber = v
	}
	f.zones[id] = z
	return z, nil
}

func (f *fakeStore) DeletePickupZone(_ context.Context, raw string) error {
	id, err := f.id("zones.delete", raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.zones[id]; !ok {
		return notFound("zones.delete")
	}
	delete(f.zones, id)
	return nil
}

func (f *fakeStore) DeliveryTiers(context.Context) ([]models.DeliveryFeeTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DeliveryFeeTier, len(f.tiers))
	copy(out, f.tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinAmount < out[j].MinAmount })
	return out, nil
}

func (f *fakeStore) CreateDeliveryTier(_ context.Context, tier *models.DeliveryFeeTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tier.ID = primitive.NewObjectID()
	f.tiers = append(f.tiers, *tier)
	return nil
}

func (f *fakeStore) ReplaceDeliveryTier(_ context.Context, raw string, tier *models.DeliveryFeeTier) error {
	id, err := f.id("tiers.update", raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tiers {
		if f.tiers[i].ID == id {
			tier.ID = id
			f.tiers[i] = *tier
			return nil
		}
	}
	return notFound("tiers.update")
}

func (f *fakeStore) DeleteDeliveryTier(_ context.Context, raw string) error {
	id, err := f.id("tiers.delete", raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tiers {
		if f.tiers[i].ID == id {
			f.tiers = append(f.tiers[:i], f.tiers[i+1:]...)
			return nil
		}
	}
	return notFound("tiers.delete")
}

func (f *fakeStore) NewCart(context.Context) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := &models.Cart{ID: primitive.NewObjectID().Hex(), Lines: []models.CartLine{}}
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeStore) Cart(_ context.Context, id string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, notFound("carts.get")
	}
	copied := *cart
	copied.Lines = cart.Snapshot()
	return &copied, nil
}

func (f *fakeStore) SaveCart(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *cart
	copied.Lines = cart.Snapshot()
	f.carts[cart.ID] = &copied
	return nil
}

func (f *fakeStore) addOrder(order models.Order, items []models.OrderItem) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = primitive.NewObjectID()
	for i := range items {
		items[i].OrderID = order.ID
	}
	f.orders[order.ID] = &order
	f.items[order.ID] = items
	return &order
}

func (f *fakeStore) ClearCart(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart, ok := f.carts[id]; ok {
		cart.Clear()
	}
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ReceiptCode == order.ReceiptCode || (order.IdempotencyKey != "" && o.IdempotencyKey == order.IdempotencyKey) {
			return apperr.Persistence("orders.create", apperr.CodeConflict, nil)
		}
	}
	order.ID = primitive.NewObjectID()
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].OrderID = order.ID
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.items[order.ID] = append([]models.OrderItem{}, items...)
	return nil
}

func (f *fakeStore) OrderByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			copied := *o
			return &copied, nil
		}
	}
	return nil, notFound("orders.by_key")
}

func (f *fakeStore) InsertNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) OrderByID(_ context.Context, raw string) (*models.Order, error) {
	id, err := f.id("orders.get", raw)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, notFound("orders.get")
	}
	copied := *o
	return &copied, nil
}

func (f *fakeStore) OrderByReceipt(_ context.Context, code, phone string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ReceiptCode == code && o.ContactPhone == phone {
			copied := *o
			return &copied, nil
		}
	}
	return nil, notFound("orders.by_receipt")
}

func (f *fakeStore) OrderItems(_ context.Context, id primitive.ObjectID) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem{}, f.items[id]...), nil
}

func (f *fakeStore) ListOrders(_ context.Context, filter database.OrderFilter) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, 0, f.failErr
	}
	out := []models.Order{}
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Phone != "" && o.ContactPhone != filter.Phone {
			continue
		}
		if filter.Search != "" && !strings.Contains(o.ReceiptCode+o.ContactName+o.ContactPhone, filter.Search) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if filter.Skip > 0 {
		if filter.Skip >= total {
			out = out[:0]
		} else {
			out = out[filter.Skip:]
		}
	}
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeStore) TransitionOrder(_ context.Context, raw string, next models.OrderStatus) (*models.Order, bool, error) {
	id, err := f.id("orders.status", raw)
	if err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, false, notFound("orders.status")
	}
	if o.Status == next {
		copied := *o
		return &copied, false, nil
	}
	if !o.Status.CanTransition(next) {
		return nil, false, &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeConflict, Field: "status", Message: "status change not allowed", Err: apperr.ErrStatusTransition}
	}
	o.Status = next
	o.UpdatedAt = time.Now()
	copied := *o
	return &copied, true, nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, raw string) error {
	id, err := f.id("orders.delete", raw)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return notFound("orders.delete")
	}
	delete(f.orders, id)
	delete(f.items, id)
	return nil
}

func (f *fakeStore) Stats(context.Context) (database.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st database.OrderStats
	for _, o := range f.orders {
		st.Total++
		switch o.Status {
		case models.OrderStatusPending:
			st.Pending++
		case models.OrderStatusPreparing:
			st.Preparing++
		case models.OrderStatusDelivered:
			st.Delivered++
			st.DailyProfit += o.DeliveryFee
		case models.OrderStatusCancelled:
			st.Cancelled++
		}
	}
	return st, nil
}

func (f *fakeStore) CloseDay(ctx context.Context, date string) (models.DailyProfit, error) {
	st, _ := f.Stats(ctx)
	if st.Total == 0 {
		return models.DailyProfit{}, apperr.Validation("orders", "no orders to clear")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record := models.DailyProfit{Date: date, TotalProfit: st.DailyProfit, TotalOrders: st.Delivered}
	f.profits = append(f.profits, record)
	f.closedDates = append(f.closedDates, date)
	f.orders = map[primitive.ObjectID]*models.Order{}
	f.items = map[primitive.ObjectID][]models.OrderItem{}
	kept := f.notifications[:0]
	for _, n := range f.notifications {
		if n.OrderID == nil {
			kept = append(kept, n)
		}
	}
	f.notifications = kept
	return record, nil
}

func (f *fakeStore) DailyProfits(context.Context, int64) ([]models.DailyProfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DailyProfit{}, f.profits...), nil
}

func (f *fakeStore) Notifications(_ context.Context, unreadOnly bool, _ int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Notification{}
	for _, n := range f.notifications {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationsRead(_ context.Context, raw string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.notifications {
		if raw != "" && f.notifications[i].ID.Hex() != raw {
			continue
		}
		if !f.notifications[i].Read {
			f.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[email]
	if !ok {
		return nil, notFound("admins.get")
	}
	return a, nil
}

type fakeBlobs struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (b *fakeBlobs) Upload(bucket, name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	url := "/public/uploads/" + bucket + "/" + name
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func (b *fakeBlobs) Delete(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, url)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recordingPublisher) Publish(ev realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
