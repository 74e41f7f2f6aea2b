package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/emberwick/storefront/app/models"
)

// Gorm is the relational Store implementation. All methods run through the
// injected *gorm.DB; multi-step mutations (add-to-cart's find-or-merge,
// order creation) are wrapped in transactions so a concurrent request can
// never observe or produce a half-written state.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// ownerScope restricts a cart query to the owner's rows, strictly within
// the owner's kind: a session-owned row is only visible while user_id is
// NULL, so migrated rows never leak back to the anonymous session.
func ownerScope(q *gorm.DB, owner Owner) *gorm.DB {
	if id, ok := owner.UserID(); ok {
		return q.Where("user_id = ?", id)
	}
	sid, _ := owner.SessionID()
	return q.Where("session_id = ? AND user_id IS NULL", sid)
}

// ─── Users ───────────────────────────────────────────────────────────────

func (s *Gorm) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

func (s *Gorm) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translate(err, "user by email")
}

func (s *Gorm) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	return user, translate(err, "user by id")
}

// ─── Products ────────────────────────────────────────────────────────────

func (s *Gorm) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, translate(err, "products")
}

func (s *Gorm) Product(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	return product, translate(err, "product")
}

func (s *Gorm) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Where("featured = ?", true).Order("id").Find(&products).Error
	return products, translate(err, "featured products")
}

func (s *Gorm) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Where("category = ?", category).Order("id").Find(&products).Error
	return products, translate(err, "products by category")
}

func (s *Gorm) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	// LOWER + LIKE instead of ILIKE so every supported dialect behaves
	// the same. A NULL scent fails the LIKE and is excluded, as required.
	like := "%" + strings.ToLower(query) + "%"
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(scent) LIKE ?", like, like, like).
		Order("id").
		Find(&products).Error
	return products, translate(err, "search products")
}

func (s *Gorm) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("store: create product: %w", err)
	}
	return nil
}

// ─── Cart ────────────────────────────────────────────────────────────────

func (s *Gorm) CartItems(ctx context.Context, owner Owner) ([]models.CartLine, error) {
	if owner.IsZero() {
		return []models.CartLine{}, nil
	}

	var items []models.CartItem
	if err := ownerScope(s.db.WithContext(ctx), owner).Order("id").Find(&items).Error; err != nil {
		return nil, translate(err, "cart items")
	}
	if len(items) == 0 {
		return []models.CartLine{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translate(err, "cart products")
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue // inner-join semantics: orphaned rows are invisible
		}
		lines = append(lines, models.CartLine{CartItem: it, Product: p})
	}
	return lines, nil
}

func (s *Gorm) AddCartItem(ctx context.Context, owner Owner, productID uint, quantity int) (models.CartItem, error) {
	if owner.IsZero() {
		return models.CartItem{}, ErrInvalidOwner
	}
	if quantity < 1 {
		return models.CartItem{}, Validationf("quantity must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return Validationf("product %d does not exist", productID)
		}

		err := ownerScope(tx, owner).Where("product_id = ?", productID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			return tx.Model(&models.CartItem{}).Where("id = ?", item.ID).
				Update("quantity", item.Quantity).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{ProductID: productID, Quantity: quantity}
			if id, ok := owner.UserID(); ok {
				item.UserID = &id
			} else {
				sid, _ := owner.SessionID()
				item.SessionID = &sid
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		if IsValidation(err) {
			return models.CartItem{}, err
		}
		return models.CartItem{}, fmt.Errorf("store: add cart item: %w", err)
	}
	return item, nil
}

func (s *Gorm) UpdateCartItem(ctx context.Context, id uint, quantity int) (models.CartItem, error) {
	if quantity < 1 {
		return models.CartItem{}, Validationf("quantity must be at least 1")
	}

	var item models.CartItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return models.CartItem{}, translate(err, "cart item")
	}
	item.Quantity = quantity
	if err := s.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).
		Update("quantity", quantity).Error; err != nil {
		return models.CartItem{}, fmt.Errorf("store: update cart item: %w", err)
	}
	return item, nil
}

func (s *Gorm) RemoveCartItem(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("store: remove cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Gorm) ClearCart(ctx context.Context, owner Owner) error {
	if owner.IsZero() {
		return ErrInvalidOwner
	}
	if err := ownerScope(s.db.WithContext(ctx), owner).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("store: clear cart: %w", err)
	}
	return nil
}

func (s *Gorm) MigrateCart(ctx context.Context, sessionID string, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("session_id = ? AND user_id IS NULL", sessionID).
		Updates(map[string]interface{}{"user_id": userID, "session_id": nil}).Error
	if err != nil {
		return fmt.Errorf("store: migrate cart: %w", err)
	}
	return nil
}

func (s *Gorm) PurgeAnonymousCarts(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id IS NULL AND created_at < ?", before).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: purge anonymous carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ─── Orders ──────────────────────────────────────────────────────────────

func (s *Gorm) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return fmt.Errorf("store: create order: %w", err)
	}
	return nil
}

func (s *Gorm) Order(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	return order, translate(err, "order")
}

func (s *Gorm) OrdersByUser(ctx context.Context, userID uint) ([]models.OrderWithItems, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err, "orders by user")
	}

	out := make([]models.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		var items []models.OrderItem
		if err := s.db.WithContext(ctx).Where("order_id = ?", o.ID).Order("id").Find(&items).Error; err != nil {
			return nil, translate(err, "order items")
		}
		lines := make([]models.OrderLine, 0, len(items))
		for _, it := range items {
			var p models.Product
			if err := s.db.WithContext(ctx).First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, translate(err, "order product")
			}
			lines = append(lines, models.OrderLine{OrderItem: it, Product: p})
		}
		out = append(out, models.OrderWithItems{Order: o, Items: lines})
	}
	return out, nil
}

func (s *Gorm) UpdateOrderStatus(ctx context.Context, id uint, status, trackingNumber string) (models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return models.Order{}, translate(err, "order")
	}
	order.Status = status
	if trackingNumber != "" {
		order.TrackingNumber = &trackingNumber
	}
	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		return models.Order{}, fmt.Errorf("store: update order status: %w", err)
	}
	return order, nil
}

// translate maps gorm errors onto the store taxonomy.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("store: %s: %w", op, err)
	}
}
