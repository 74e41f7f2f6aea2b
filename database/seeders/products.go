package seeders

import (
	"gorm.io/gorm"

	"github.com/emberwick/storefront/app/models"
)

func init() {
	Register("products", SeedProducts)
}

func strptr(s string) *string { return &s }

// CatalogProducts is the starter catalog. The memory store seeds from the
// same list so both backends boot with identical data.
func CatalogProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Lavender Dreams",
			Description: "Soothing lavender with vanilla notes",
			Price:       "28.00",
			Image:       "/storage/products/lavender-dreams.jpg",
			Category:    models.CategoryScented,
			Featured:    true,
			InStock:     true,
			Scent:       strptr("Lavender & Vanilla"),
			Size:        "8 oz",
			BurnTime:    45,
			Ingredients: "Natural soy wax, cotton wick, lavender essential oil, vanilla fragrance",
		},
		{
			Name:        "Eucalyptus Mint",
			Description: "Fresh eucalyptus with cooling mint",
			Price:       "25.00",
			Image:       "/storage/products/eucalyptus-mint.jpg",
			Category:    models.CategoryScented,
			Featured:    true,
			InStock:     true,
			Scent:       strptr("Eucalyptus & Mint"),
			Size:        "8 oz",
			BurnTime:    40,
			Ingredients: "Natural soy wax, cotton wick, eucalyptus essential oil, peppermint oil",
		},
		{
			Name:        "Rose Bergamot",
			Description: "Elegant rose with citrus bergamot",
			Price:       "32.00",
			Image:       "/storage/products/rose-bergamot.jpg",
			Category:    models.CategoryScented,
			Featured:    true,
			InStock:     true,
			Scent:       strptr("Rose & Bergamot"),
			Size:        "10 oz",
			BurnTime:    50,
			Ingredients: "Natural soy wax, cotton wick, rose essential oil, bergamot oil",
		},
		{
			Name:        "Sandalwood Vanilla",
			Description: "Warm sandalwood with sweet vanilla",
			Price:       "30.00",
			Image:       "/storage/products/sandalwood-vanilla.jpg",
			Category:    models.CategoryScented,
			Featured:    true,
			InStock:     true,
			Scent:       strptr("Sandalwood & Vanilla"),
			Size:        "8 oz",
			BurnTime:    48,
			Ingredients: "Natural soy wax, cotton wick, sandalwood oil, vanilla extract",
		},
		{
			Name:        "Pure White",
			Description: "Clean unscented candle for pure light",
			Price:       "22.00",
			Image:       "/storage/products/pure-white.jpg",
			Category:    models.CategoryUnscented,
			Featured:    false,
			InStock:     true,
			Scent:       nil,
			Size:        "6 oz",
			BurnTime:    35,
			Ingredients: "Natural soy wax, cotton wick",
		},
		{
			Name:        "Holiday Spice",
			Description: "Warm cinnamon and orange seasonal blend",
			Price:       "26.00",
			Image:       "/storage/products/holiday-spice.jpg",
			Category:    models.CategorySeasonal,
			Featured:    false,
			InStock:     true,
			Scent:       strptr("Cinnamon & Orange"),
			Size:        "8 oz",
			BurnTime:    42,
			Ingredients: "Natural soy wax, cotton wick, cinnamon bark oil, sweet orange oil",
		},
	}
}

// SeedProducts inserts the starter catalog. A non-empty products table is
// left alone so reseeding never duplicates rows.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := CatalogProducts()
	return db.Create(&products).Error
}
