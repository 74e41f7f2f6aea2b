package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emberwick/storefront/app/models"
)

// Memory is the in-process Store implementation: plain maps guarded by one
// mutex, with monotonic id counters. Iteration is always by ascending id,
// so listings come back in stable insertion order. Used by the test suite
// and by DB_DRIVER=memory.
type Memory struct {
	mu sync.Mutex

	users      map[uint]models.User
	products   map[uint]models.Product
	cartItems  map[uint]models.CartItem
	orders     map[uint]models.Order
	orderItems map[uint]models.OrderItem

	nextUser      uint
	nextProduct   uint
	nextCartItem  uint
	nextOrder     uint
	nextOrderItem uint
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      map[uint]models.User{},
		products:   map[uint]models.Product{},
		cartItems:  map[uint]models.CartItem{},
		orders:     map[uint]models.Order{},
		orderItems: map[uint]models.OrderItem{},
	}
}

// ownsCartItem matches strictly within the owner's kind, mirroring the SQL
// scope: user rows by user id, session rows only while no user id is set.
func ownsCartItem(item models.CartItem, owner Owner) bool {
	if id, ok := owner.UserID(); ok {
		return item.UserID != nil && *item.UserID == id
	}
	sid, ok := owner.SessionID()
	if !ok {
		return false
	}
	return item.UserID == nil && item.SessionID != nil && *item.SessionID == sid
}

func sortedIDs[M ~map[uint]V, V any](m M) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ─── Users ───────────────────────────────────────────────────────────────

func (s *Memory) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrConflict
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Memory) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range sortedIDs(s.users) {
		if s.users[id].Email == email {
			return s.users[id], nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *Memory) UserByID(_ context.Context, id uint) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// ─── Products ────────────────────────────────────────────────────────────

func (s *Memory) Products(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectProducts(func(models.Product) bool { return true }), nil
}

func (s *Memory) Product(_ context.Context, id uint) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Memory) FeaturedProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectProducts(func(p models.Product) bool { return p.Featured }), nil
}

func (s *Memory) ProductsByCategory(_ context.Context, category string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectProducts(func(p models.Product) bool { return p.Category == category }), nil
}

func (s *Memory) SearchProducts(_ context.Context, query string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	return s.selectProducts(func(p models.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			return true
		}
		// A product without a scent is never matched through it.
		return p.Scent != nil && strings.Contains(strings.ToLower(*p.Scent), q)
	}), nil
}

func (s *Memory) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProduct++
	product.ID = s.nextProduct
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	s.products[product.ID] = *product
	return nil
}

func (s *Memory) selectProducts(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, id := range sortedIDs(s.products) {
		if keep(s.products[id]) {
			out = append(out, s.products[id])
		}
	}
	return out
}

// ─── Cart ────────────────────────────────────────────────────────────────

func (s *Memory) CartItems(_ context.Context, owner Owner) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := []models.CartLine{}
	if owner.IsZero() {
		return lines, nil
	}
	for _, id := range sortedIDs(s.cartItems) {
		item := s.cartItems[id]
		if !ownsCartItem(item, owner) {
			continue
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{CartItem: item, Product: product})
	}
	return lines, nil
}

func (s *Memory) AddCartItem(_ context.Context, owner Owner, productID uint, quantity int) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner.IsZero() {
		return models.CartItem{}, ErrInvalidOwner
	}
	if quantity < 1 {
		return models.CartItem{}, Validationf("quantity must be at least 1")
	}
	if _, ok := s.products[productID]; !ok {
		return models.CartItem{}, Validationf("product %d does not exist", productID)
	}

	for _, id := range sortedIDs(s.cartItems) {
		item := s.cartItems[id]
		if item.ProductID == productID && ownsCartItem(item, owner) {
			item.Quantity += quantity
			s.cartItems[id] = item
			return item, nil
		}
	}

	s.nextCartItem++
	item := models.CartItem{
		ID:        s.nextCartItem,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	if id, ok := owner.UserID(); ok {
		item.UserID = &id
	} else {
		sid, _ := owner.SessionID()
		item.SessionID = &sid
	}
	s.cartItems[item.ID] = item
	return item, nil
}

func (s *Memory) UpdateCartItem(_ context.Context, id uint, quantity int) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return models.CartItem{}, Validationf("quantity must be at least 1")
	}
	item, ok := s.cartItems[id]
	if !ok {
		return models.CartItem{}, ErrNotFound
	}
	item.Quantity = quantity
	s.cartItems[id] = item
	return item, nil
}

func (s *Memory) RemoveCartItem(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return false, nil
	}
	delete(s.cartItems, id)
	return true, nil
}

func (s *Memory) ClearCart(_ context.Context, owner Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner.IsZero() {
		return ErrInvalidOwner
	}
	for id, item := range s.cartItems {
		if ownsCartItem(item, owner) {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *Memory) MigrateCart(_ context.Context, sessionID string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.UserID == nil && item.SessionID != nil && *item.SessionID == sessionID {
			uid := userID
			item.UserID = &uid
			item.SessionID = nil
			s.cartItems[id] = item
		}
	}
	return nil
}

func (s *Memory) PurgeAnonymousCarts(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, item := range s.cartItems {
		if item.UserID == nil && item.CreatedAt.Before(before) {
			delete(s.cartItems, id)
			purged++
		}
	}
	return purged, nil
}

// ─── Orders ──────────────────────────────────────────────────────────────

func (s *Memory) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrder++
	order.ID = s.nextOrder
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	if order.Status == "" {
		order.Status = models.OrderStatusCreated
	}
	s.orders[order.ID] = *order

	for i := range items {
		s.nextOrderItem++
		items[i].ID = s.nextOrderItem
		items[i].OrderID = order.ID
		s.orderItems[items[i].ID] = items[i]
	}
	return nil
}

func (s *Memory) Order(_ context.Context, id uint) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

func (s *Memory) OrdersByUser(_ context.Context, userID uint) ([]models.OrderWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []models.Order{}
	for _, id := range sortedIDs(s.orders) {
		o := s.orders[id]
		if o.UserID != nil && *o.UserID == userID {
			orders = append(orders, o)
		}
	}
	// Newest first, matching the relational implementation.
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})

	out := make([]models.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		lines := []models.OrderLine{}
		for _, id := range sortedIDs(s.orderItems) {
			item := s.orderItems[id]
			if item.OrderID != o.ID {
				continue
			}
			product, ok := s.products[item.ProductID]
			if !ok {
				continue
			}
			lines = append(lines, models.OrderLine{OrderItem: item, Product: product})
		}
		out = append(out, models.OrderWithItems{Order: o, Items: lines})
	}
	return out, nil
}

func (s *Memory) UpdateOrderStatus(_ context.Context, id uint, status, trackingNumber string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	order.Status = status
	if trackingNumber != "" {
		order.TrackingNumber = &trackingNumber
	}
	order.UpdatedAt = time.Now()
	s.orders[id] = order
	return order, nil
}
