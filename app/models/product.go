package models

import "gorm.io/gorm"

// Product categories. The set is open — an unknown category simply filters
// to an empty result — but these are the ones the catalog seeds.
const (
	CategoryScented   = "scented"
	CategoryUnscented = "unscented"
	CategorySeasonal  = "seasonal"
)

// Product is a catalog entry. Price is stored as a decimal string
// (e.g. "28.00") so no float drift ever reaches an order snapshot.
// Scent is nullable: unscented candles have none, and a NULL scent
// is never matched by search.
type Product struct {
	gorm.Model
	Name        string  `gorm:"size:255;not null;index"      json:"name"`
	Description string  `gorm:"type:text"                    json:"description"`
	Price       string  `gorm:"type:decimal(10,2);not null"  json:"price"`
	Image       string  `gorm:"size:1024"                    json:"image"`
	Category    string  `gorm:"size:50;not null;index"       json:"category"`
	Featured    bool    `gorm:"not null;default:false;index" json:"featured"`
	InStock     bool    `gorm:"not null"                     json:"inStock"`
	Scent       *string `gorm:"size:255"                     json:"scent"`
	Size        string  `gorm:"size:50"                      json:"size"`
	BurnTime    int     `json:"burnTime"` // hours
	Ingredients string  `gorm:"type:text"                    json:"ingredients"`
}
