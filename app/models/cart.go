package models

import "time"

// CartItem is one line of a cart. Exactly one of UserID and SessionID is
// set: a row belongs either to a registered user or to an anonymous
// session, never both. The store layer enforces this through its Owner
// type; the columns stay nullable so migration can flip a row from
// session to user ownership in place.
//
// Cart rows are plain rows, not a soft-deleted aggregate: removing an
// item deletes the row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index:idx_cart_owner_user" json:"userId"`
	SessionID *string   `gorm:"size:255;index:idx_cart_owner_session" json:"sessionId"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a cart item joined with its product, the shape the cart
// endpoints return.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}
