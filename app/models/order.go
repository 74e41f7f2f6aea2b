package models

import "gorm.io/gorm"

// Order statuses. Only "created" is assigned by this service; the rest are
// written by the external fulfilment process through UpdateOrderStatus.
const (
	OrderStatusCreated   = "created"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order is an immutable snapshot of a checkout. Totals are decimal
// strings computed at creation time. Like cart rows, an order belongs to
// either a user or an anonymous session.
type Order struct {
	gorm.Model
	UserID          *uint   `gorm:"index" json:"userId"`
	SessionID       *string `gorm:"size:255;index" json:"sessionId"`
	Status          string  `gorm:"size:50;not null;default:created" json:"status"`
	TrackingNumber  *string `gorm:"size:255" json:"trackingNumber"`
	Email           string  `gorm:"size:255" json:"email"`
	ShippingAddress string  `gorm:"type:text" json:"shippingAddress"`
	Subtotal        string  `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Shipping        string  `gorm:"type:decimal(10,2);not null" json:"shipping"`
	Total           string  `gorm:"type:decimal(10,2);not null" json:"total"`
}

// OrderItem is one priced line of an order. Price is copied from the
// product at order time and must never change afterwards, even when the
// product's price is edited later.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"orderId"`
	ProductID uint   `gorm:"not null" json:"productId"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	Price     string `gorm:"type:decimal(10,2);not null" json:"price"`
}

// OrderWithItems is an order joined with its lines and their products,
// returned by the order-history endpoint.
type OrderWithItems struct {
	Order
	Items []OrderLine `json:"orderItems"`
}

// OrderLine is an order item joined with its product.
type OrderLine struct {
	OrderItem
	Product Product `json:"product"`
}
